package run

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.firedancer.io/nostd/pkg/entrypoint"
	"go.firedancer.io/nostd/pkg/example"
	"go.firedancer.io/nostd/pkg/fixture"
	"go.firedancer.io/nostd/pkg/sealevel"
	"k8s.io/klog/v2"
)

var Cmd = cobra.Command{
	Use:   "run <fixture.yaml>",
	Short: "Run the example transfer program against a fixture",
	Args:  cobra.ExactArgs(1),
	Run:   run,
}

var flagOut string

func init() {
	Cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write the post-execution fixture to this path")
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
	if f.DataIncrease() != entrypoint.MaxPermittedDataIncrease {
		klog.Warningf("ignoring max_data_increase %d, the program is built for %d", f.DataIncrease(), entrypoint.MaxPermittedDataIncrease)
	}
	if params.ProgramID != example.ProgramID {
		klog.Warningf("fixture addresses %s, running %s", params.ProgramID, example.ProgramID)
		params.ProgramID = example.ProgramID
	}

	res, err := example.Execute(params)
	if err != nil {
		klog.Exitf("execution failed: %s", err)
	}

	for _, line := range res.Logs {
		fmt.Println(line)
	}
	for i, inv := range res.Invocations {
		fmt.Printf("invocation %d: %s -> %s accounts=%v signers=%v err=%v\n",
			i, inv.Caller, inv.Instruction.ProgramId,
			lo.Map(inv.Instruction.Accounts, func(m sealevel.AccountMeta, _ int) string {
				return m.Pubkey.String()
			}),
			inv.Signers, inv.Err)
	}
	fmt.Printf("status %#x, %d compute units\n", res.Status, res.ComputeUnits)

	if flagOut == "" {
		return
	}
	out, err := fixture.FromParams(params, entrypoint.MaxPermittedDataIncrease).Marshal()
	if err != nil {
		klog.Exit(err)
	}
	if err = os.WriteFile(flagOut, out, 0o644); err != nil {
		klog.Exit(err)
	}
}
