package build

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.firedancer.io/nostd/pkg/fixture"
	"go.firedancer.io/nostd/pkg/serialize"
	"k8s.io/klog/v2"
)

var Cmd = cobra.Command{
	Use:   "build <fixture.yaml>",
	Short: "Serialize a fixture into a program input buffer",
	Args:  cobra.ExactArgs(1),
	Run:   run,
}

var flagOut string

func init() {
	Cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output path (default: fixture path with .bin suffix)")
}

func run(c *cobra.Command, args []string) {
	path := args[0]

	f, err := fixture.Load(path)
	if err != nil {
		klog.Exit(err)
	}
	params, err := f.Params()
	if err != nil {
		klog.Exitf("%s: %s", path, err)
	}
	buf, _, err := serialize.Serialize(params, f.DataIncrease())
	if err != nil {
		klog.Exitf("failed to serialize %s: %s", path, err)
	}

	out := flagOut
	if out == "" {
		out = strings.TrimSuffix(path, ".yaml") + ".bin"
	}
	if err = os.WriteFile(out, buf, 0o644); err != nil {
		klog.Exit(err)
	}
	klog.Infof("wrote %d accounts, %d bytes to %s", len(params.Accounts), len(buf), out)
}
