package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"clawhub/internal/retry"
	"clawhub/internal/skillerr"
	"clawhub/internal/tui/styles"
)

// retryPolicy wraps every registry call made by a command.
var retryPolicy = retry.DefaultPolicy()

func withRetry[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	return retry.DoWith(ctx, retryPolicy, op)
}

// reportFailure prints "<Op> failed: <msg>" and the category hint to stderr.
// Operation failures are not fatal: the command still exits zero.
func reportFailure(cmd *cobra.Command, op string, err error) error {
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, styles.ErrorMsg.Render(fmt.Sprintf("%s failed: %v", op, err)))
	if hint := skillerr.Hint(err); hint != "" {
		fmt.Fprintln(w, styles.Muted.Render("Hint: "+hint))
	}
	return nil
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.SuccessMsg.Render(fmt.Sprintf(format, args...)))
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintln(w, styles.WarningMsg.Render("Warning: "+warning))
	}
}

func printMuted(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// parseSkillArg splits "slug@version".
func parseSkillArg(arg string) (slug, version string) {
	slug, version, _ = strings.Cut(arg, "@")
	return strings.TrimSpace(slug), strings.TrimSpace(version)
}
