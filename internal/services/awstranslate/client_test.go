package awstranslate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstr "github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/aws/aws-sdk-go-v2/service/translate/types"
	"github.com/aws/smithy-go"

	"pptx-translator/internal/services"
	"pptx-translator/internal/services/awstranslate"
	"pptx-translator/internal/translate"
)

type fakeAPI struct {
	translateIn  []*awstr.TranslateTextInput
	importIn     []*awstr.ImportTerminologyInput
	translateErr error
	importErr    error
}

func (f *fakeAPI) TranslateText(_ context.Context, in *awstr.TranslateTextInput, _ ...func(*awstr.Options)) (*awstr.TranslateTextOutput, error) {
	f.translateIn = append(f.translateIn, in)
	if f.translateErr != nil {
		return nil, f.translateErr
	}
	return &awstr.TranslateTextOutput{TranslatedText: aws.String("[" + aws.ToString(in.TargetLanguageCode) + "] " + aws.ToString(in.Text))}, nil
}

func (f *fakeAPI) ImportTerminology(_ context.Context, in *awstr.ImportTerminologyInput, _ ...func(*awstr.Options)) (*awstr.ImportTerminologyOutput, error) {
	f.importIn = append(f.importIn, in)
	if f.importErr != nil {
		return nil, f.importErr
	}
	return &awstr.ImportTerminologyOutput{
		TerminologyProperties: &types.TerminologyProperties{Name: in.Name, TermCount: aws.Int32(2)},
	}, nil
}

func TestTranslatePassesLanguagesAndTerminology(t *testing.T) {
	api := &fakeAPI{}
	client := awstranslate.New(api, nil)

	out, err := client.Translate(context.Background(), translate.Request{
		Text:        "Hello",
		Target:      "ja",
		Terminology: []string{"pptx-translator-terminology"},
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "[ja] Hello" {
		t.Fatalf("unexpected output %q", out)
	}
	in := api.translateIn[0]
	if aws.ToString(in.SourceLanguageCode) != "auto" {
		t.Fatalf("expected auto source, got %q", aws.ToString(in.SourceLanguageCode))
	}
	if len(in.TerminologyNames) != 1 || in.TerminologyNames[0] != "pptx-translator-terminology" {
		t.Fatalf("unexpected terminology names %v", in.TerminologyNames)
	}
}

func TestTranslateWithoutTerminologyOmitsNames(t *testing.T) {
	api := &fakeAPI{}
	client := awstranslate.New(api, nil)
	if _, err := client.Translate(context.Background(), translate.Request{Text: "Hi", Source: "en", Target: "de"}); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	in := api.translateIn[0]
	if in.TerminologyNames != nil {
		t.Fatalf("expected nil terminology names, got %v", in.TerminologyNames)
	}
	if aws.ToString(in.SourceLanguageCode) != "en" {
		t.Fatalf("unexpected source %q", aws.ToString(in.SourceLanguageCode))
	}
}

func TestTranslateErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want translate.Outcome
	}{
		{"validation", &smithy.GenericAPIError{Code: "ValidationException", Message: "bad input"}, translate.OutcomeSkipped},
		{"size limit", &types.TextSizeLimitExceededException{Message: aws.String("too long")}, translate.OutcomeSkipped},
		{"throttled", &types.TooManyRequestsException{Message: aws.String("slow down")}, translate.OutcomeFatal},
		{"unsupported pair", &types.UnsupportedLanguagePairException{Message: aws.String("nope")}, translate.OutcomeFatal},
		{"network", errors.New("connection reset"), translate.OutcomeFatal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := awstranslate.New(&fakeAPI{translateErr: tc.err}, nil)
			_, err := client.Translate(context.Background(), translate.Request{Text: "x", Target: "fr"})
			if got := translate.Classify(err); got != tc.want {
				t.Fatalf("Classify = %s, want %s (err %v)", got, tc.want, err)
			}
			if tc.want == translate.OutcomeFatal && !errors.Is(err, services.ErrExternal) {
				t.Fatalf("expected external error, got %v", err)
			}
		})
	}
}

func TestTranslateCancelled(t *testing.T) {
	client := awstranslate.New(&fakeAPI{translateErr: context.Canceled}, nil)
	_, err := client.Translate(context.Background(), translate.Request{Text: "x", Target: "fr"})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestImportTerminologyDefaults(t *testing.T) {
	api := &fakeAPI{}
	client := awstranslate.New(api, nil)
	data := []byte("en,fr\nhello,bonjour\n")
	if err := client.ImportTerminology(context.Background(), translate.Terminology{Name: "glossary", Data: data}); err != nil {
		t.Fatalf("ImportTerminology: %v", err)
	}
	in := api.importIn[0]
	if aws.ToString(in.Name) != "glossary" {
		t.Fatalf("unexpected name %q", aws.ToString(in.Name))
	}
	if in.MergeStrategy != types.MergeStrategyOverwrite {
		t.Fatalf("unexpected merge strategy %q", in.MergeStrategy)
	}
	if in.TerminologyData.Format != types.TerminologyDataFormatCsv {
		t.Fatalf("unexpected format %q", in.TerminologyData.Format)
	}
	if string(in.TerminologyData.File) != string(data) {
		t.Fatalf("terminology bytes were altered")
	}
}

func TestImportTerminologyFailure(t *testing.T) {
	client := awstranslate.New(&fakeAPI{importErr: &types.LimitExceededException{Message: aws.String("too many")}}, nil)
	err := client.ImportTerminology(context.Background(), translate.Terminology{Name: "g", Data: []byte("en,fr\na,b\n")})
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
}
