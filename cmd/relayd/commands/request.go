package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/framerelay/internal/server"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

// request sends one request through a freshly readied bridge and prints the data
func requestCmd() *cobra.Command {
	var (
		kind    string
		req     types.Request
		headers map[string]string
	)

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send a single request through the frame and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Headers = headers

			bridge, err := server.NewBridge(cfg, nil, logger, nil, nil)
			if err != nil {
				return err
			}
			defer bridge.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := bridge.Adapter.Ready(ctx); err != nil {
				return err
			}
			data, err := bridge.Relay.Send(ctx, types.RequestKind(kind), req)
			if err != nil {
				return err
			}

			out, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(types.KindREST), "request kind: rest or fetch")
	cmd.Flags().StringVarP(&req.URL, "url", "u", "", "request URL")
	cmd.Flags().StringVarP(&req.Method, "method", "X", "", "HTTP method")
	cmd.Flags().StringVarP(&req.Body, "body", "d", "", "request body, sent as-is")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "request header key=value (repeatable)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
