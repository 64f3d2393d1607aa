package functional

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
)

// aCleanEnvironment is a no-op because the Before hook already sets up
// the environment. This step exists so feature files read naturally.
func aCleanEnvironment(ctx context.Context) (context.Context, error) {
	return ctx, nil
}

func theFixtureRepository(ctx context.Context, fixtures string) (context.Context, error) {
	state := getState(ctx)
	state.repository = fixtures
	return ctx, nil
}

// theHomeFileContains writes a file relative to the scenario home directory.
func theHomeFileContains(ctx context.Context, path string, content *godog.DocString) (context.Context, error) {
	state := getState(ctx)
	fullPath := filepath.Join(state.homeDir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return ctx, err
	}
	return ctx, os.WriteFile(fullPath, []byte(content.Content+"\n"), 0o644)
}

// iRun executes a command string, replacing "opamresolve" with the test binary path.
func iRun(ctx context.Context, command string) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}

	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "opamresolve" {
		args[0] = state.binPath
	}

	cmd := exec.Command(args[0], args[1:]...)
	// Relative lockfile paths resolve against the home directory
	cmd.Dir = state.homeDir

	env := []string{
		"HOME=" + state.homeDir,
		"PATH=" + os.Getenv("PATH"),
		"OPAMRESOLVE_HOME=" + state.homeDir,
	}
	if state.repository != "" {
		env = append(env, "OPAMRESOLVE_REPOSITORY="+state.repository)
	}
	cmd.Env = env

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	state.stdout = stdout.String()
	state.stderr = stderr.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			state.exitCode = exitErr.ExitCode()
		} else {
			return ctx, fmt.Errorf("command execution failed: %w", err)
		}
	} else {
		state.exitCode = 0
	}

	return ctx, nil
}

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theOutputDoesNotContain(ctx context.Context, text string) error {
	state := getState(ctx)
	if strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout not to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr to contain %q, got:\n%s", text, state.stderr)
	}
	return nil
}

func theFileExists(ctx context.Context, path string) error {
	state := getState(ctx)
	fullPath := filepath.Join(state.homeDir, path)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("expected file %q to exist", fullPath)
	}
	return nil
}
