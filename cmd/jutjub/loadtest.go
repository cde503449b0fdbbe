package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	loadtestUC "github.com/khoahotran/jutjub/internal/application/usecase/loadtest"
)

func newLoadtestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Smoke-test server counters under concurrent load",
	}

	var in loadtestUC.ConcurrentViewsInput
	views := &cobra.Command{
		Use:   "views <id>",
		Short: "Open one video from many concurrent viewers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.VideoID = args[0]
			fmt.Fprintf(cmd.ErrOrStderr(), "%d viewers x %d views against %s\n", in.Threads, in.ViewsPerThread, a.client.BaseURL())

			out, err := loadtestUC.NewConcurrentViewsUseCase(a.client, a.logger).Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			result := struct {
				*loadtestUC.ConcurrentViewsOutput
				Passed bool
			}{out, out.Passed()}
			if err := a.print(result, func(w io.Writer) { printLoadtest(w, out) }); err != nil {
				return err
			}
			if !out.Passed() {
				return fmt.Errorf("%d of %d views failed", out.Failed, out.Expected)
			}
			return nil
		},
	}
	f := views.Flags()
	f.IntVar(&in.Threads, "threads", loadtestUC.DefaultThreads, "concurrent viewers")
	f.IntVar(&in.ViewsPerThread, "views", loadtestUC.DefaultViewsPerThread, "views per viewer")
	f.DurationVar(&in.Delay, "delay", loadtestUC.DefaultDelay, "pause between views of one viewer")
	f.DurationVar(&in.Timeout, "timeout", loadtestUC.DefaultTimeout, "timeout of a single view")

	cmd.AddCommand(views)
	return cmd
}

func printLoadtest(w io.Writer, out *loadtestUC.ConcurrentViewsOutput) {
	fmt.Fprintln(w, "TEST RESULTS")
	fmt.Fprintf(w, "Duration:            %s\n", out.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Successful requests: %d\n", out.Successful)
	fmt.Fprintf(w, "Failed requests:     %d\n", out.Failed)
	fmt.Fprintf(w, "Expected requests:   %d\n", out.Expected)
	fmt.Fprintf(w, "Requests per second: %.2f\n", out.RequestsPerSecond)
	if out.ViewsBefore >= 0 && out.ViewsAfter >= 0 {
		fmt.Fprintf(w, "View counter:        %d -> %d (+%d)\n", out.ViewsBefore, out.ViewsAfter, out.ViewsAfter-out.ViewsBefore)
	}
	if out.Passed() {
		fmt.Fprintln(w, "TEST PASSED")
		return
	}
	fmt.Fprintln(w, "TEST FAILED")
}
