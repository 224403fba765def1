package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"pptx-translator/internal/config"
	"pptx-translator/internal/fileutil"
	"pptx-translator/internal/services/awsconf"
	"pptx-translator/internal/services/llm"
)

// CheckInputFile verifies the deck exists, is a regular readable file and
// carries a .pptx extension.
func CheckInputFile(path string) Result {
	const name = "Input deck"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "no input file given"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a regular file)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	if !strings.EqualFold(filepath.Ext(path), ".pptx") {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: expected a .pptx file)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDistinctOutput fails when output would replace input.
func CheckDistinctOutput(input, output string) Result {
	const name = "Output path"
	same, err := fileutil.SameFile(input, output)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", output, err)}
	}
	if same {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: would overwrite the input deck)", output)}
	}
	if _, err := os.Stat(output); err == nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (exists, will be replaced)", output)}
	}
	return Result{Name: name, Passed: true, Detail: output}
}

// CheckLLMKey verifies an API key is configured without calling the endpoint.
func CheckLLMKey(cfg config.LLM) Result {
	const name = "LLM endpoint"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing (set llm.api_key or OPENROUTER_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: "API key configured"}
}

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.FromConfig(cfg), llm.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckAWS resolves the AWS configuration. With probe set it also
// retrieves credentials, which may contact an identity provider.
func CheckAWS(ctx context.Context, cfg config.AWS, probe bool) Result {
	const name = "AWS"

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	awsCfg, err := awsconf.Load(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	detail := fmt.Sprintf("region %s", awsCfg.Region)
	if !probe {
		return Result{Name: name, Passed: true, Detail: detail}
	}
	if awsCfg.Credentials == nil {
		return Result{Name: name, Detail: detail + " (error: no credential provider)"}
	}
	creds, err := awsCfg.Credentials.Retrieve(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: credentials: %v)", detail, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s, credentials from %s", detail, creds.Source)}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
