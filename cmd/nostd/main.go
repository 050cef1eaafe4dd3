package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.firedancer.io/nostd/cmd/nostd/build"
	"go.firedancer.io/nostd/cmd/nostd/inspect"
	"go.firedancer.io/nostd/cmd/nostd/run"
	"k8s.io/klog/v2"
)

var cmd = cobra.Command{
	Use:   "nostd",
	Short: "Build, inspect and run program input buffers",
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(
		&build.Cmd,
		&inspect.Cmd,
		&run.Cmd,
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	cobra.CheckErr(cmd.ExecuteContext(ctx))
}
