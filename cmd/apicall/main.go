// Command apicall issues one request through upstream.Caller and prints the
// outcome as JSON.
//
//	apicall GET status 418
//	apicall POST post -d '{"a":1}' -H 'Content-Type: application/json'
//	apicall GET anything "a b/c" --curl
//
// Path arguments are separate segments; each is escaped on its own.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:          "apicall METHOD [SEGMENT...]",
		Short:        "Send one request to the configured upstream",
		Version:      version,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.method = args[0]
			opts.segments = args[1:]
			return opts.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.scheme, "scheme", "", "override upstream scheme")
	flags.StringVar(&opts.host, "host", "", "override upstream host")
	flags.StringVar(&opts.port, "port", "", "override upstream port")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, `request header "Name: value", repeatable`)
	flags.StringVarP(&opts.data, "data", "d", "", "request body")
	flags.DurationVar(&opts.timeout, "timeout", 0, "override upstream timeout")
	flags.BoolVar(&opts.curl, "curl", false, "print the request as a curl command instead of sending it")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log the request at debug level to stderr")

	return cmd
}
