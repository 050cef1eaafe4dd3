package inspect

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.firedancer.io/nostd/pkg/entrypoint"
	"go.firedancer.io/nostd/pkg/serialize"
	"go.firedancer.io/nostd/pkg/util"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

var Cmd = cobra.Command{
	Use:   "inspect <input.bin>...",
	Short: "Parse program input buffers and print their accounts",
	Args:  cobra.MinimumNArgs(1),
	Run:   run,
}

var (
	flagMaxAccounts     int
	flagMaxDataIncrease int
	flagNoDup           bool
	flagWorkers         int
)

func init() {
	Cmd.Flags().IntVar(&flagMaxAccounts, "max-accounts", 64, "Number of account handles to parse into")
	Cmd.Flags().IntVar(&flagMaxDataIncrease, "max-data-increase", entrypoint.MaxPermittedDataIncrease, "Realloc headroom the buffers were serialized with")
	Cmd.Flags().BoolVar(&flagNoDup, "no-dup", false, "Reject buffers carrying duplicate accounts")
	Cmd.Flags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "Number of files parsed concurrently")
}

func run(c *cobra.Command, args []string) {
	if flagWorkers < 1 {
		klog.Exitf("--workers must be at least 1, got %d", flagWorkers)
	}
	if flagMaxAccounts < 0 {
		klog.Exitf("--max-accounts must not be negative, got %d", flagMaxAccounts)
	}
	reports := make([]string, len(args))

	group, ctx := errgroup.WithContext(c.Context())
	group.SetLimit(flagWorkers)
	for i, path := range args {
		i, path := i, path
		group.Go(func() error {
			report, err := inspectFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		klog.Exit(err)
	}

	for _, report := range reports {
		fmt.Print(report)
	}
}

func inspectFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	parser := entrypoint.Parser{MaxDataIncrease: flagMaxDataIncrease}
	accounts := make([]entrypoint.AccountInfo, flagMaxAccounts)

	var (
		programID *solana.PublicKey
		n         int
		data      []byte
	)
	if flagNoDup {
		programID, n, data, err = parser.DeserializeNoDup(buf, accounts)
	} else {
		programID, n, data, err = parser.Deserialize(buf, accounts)
	}
	if err != nil {
		return "", err
	}
	return Report(path, programID, accounts[:n], data), nil
}

// Report formats the parsed view of one input buffer.
func Report(name string, programID *solana.PublicKey, accounts []entrypoint.AccountInfo, data []byte) string {
	keys := lo.Map(accounts, func(a entrypoint.AccountInfo, _ int) solana.PublicKey {
		return *a.Key()
	})
	unique := len(util.DedupePubkeys(keys))
	writable := lo.CountBy(accounts, func(a entrypoint.AccountInfo) bool {
		return a.IsWritable()
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s: program %s, %d bytes of data, %d accounts (%d unique, %d writable)\n",
		name, programID, len(data), len(accounts), unique, writable)

	for i, a := range accounts {
		if _, first, dup := lo.FindIndexOf(accounts[:i], func(o entrypoint.AccountInfo) bool {
			return o.SameAccount(a)
		}); dup {
			fmt.Fprintf(&b, "  #%d duplicate of #%d\n", i, first)
			continue
		}

		flags := lo.Compact([]string{
			lo.Ternary(a.IsSigner(), "signer", ""),
			lo.Ternary(a.IsWritable(), "writable", ""),
			lo.Ternary(a.Executable(), "executable", ""),
		})
		hash := serialize.AccountHash(&serialize.Account{
			Key:        *a.Key(),
			Owner:      *a.Owner(),
			Lamports:   a.UncheckedLamports(),
			Data:       a.UncheckedData(),
			Executable: a.Executable(),
		})
		fmt.Fprintf(&b, "  #%d %s owner=%s lamports=%d data=%d [%s] blake3=%x\n",
			i, a.Key(), a.Owner(), a.UncheckedLamports(), a.DataLen(), strings.Join(flags, " "), hash[:8])
	}
	return b.String()
}
