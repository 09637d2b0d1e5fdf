package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ssiserve/internal/server"
	"ssiserve/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ssiserve [port]",
	Short: "Static file server with server-side includes",
	Long: `ssiserve serves the current directory over HTTP. HTML documents
(.html, .shtml) are rendered before delivery: every
<!-- #include virtual="path" --> comment is replaced by the contents of
the referenced file.`,
	Args:          cobra.MaximumNArgs(1),
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.SetVersionTemplate("ssiserve version {{.Version}}\n")
}

func runServe(cmd *cobra.Command, args []string) error {
	portArg := ""
	if len(args) == 1 {
		portArg = args[0]
	}

	workDir, err := os.Getwd()
	if err != nil {
		return err
	}
	a, err := newApp(workDir, portArg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.NewServer(a.cfg.Server, a.cfg.Render.TempDir, a.resolver, a.engine, a.logger)

	ln, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	printBanner(cmd.OutOrStdout(), a.cfg.Server.Host, ln.Addr())

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			a.logger.Error("Server error", "error", err.Error())
			return err
		}
	case sig := <-shutdown:
		a.logger.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("Error during shutdown", "error", err.Error())
			return err
		}
		a.logger.Info("Server stopped gracefully")
	}

	return nil
}

// printBanner announces the listen address.
func printBanner(w io.Writer, host string, addr net.Addr) {
	port := 0
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
	}
	if host == "" {
		host = "0.0.0.0"
	}
	url := "http://" + net.JoinHostPort(displayHost(host), strconv.Itoa(port)) + "/"

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	bold.Fprintf(w, "Serving HTTP on %s port %d ", host, port)
	cyan.Fprintf(w, "(%s)", url)
	fmt.Fprintln(w, " ...")
}

func displayHost(host string) string {
	if host == "0.0.0.0" || host == "::" {
		return "localhost"
	}
	return host
}
