package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/infrastructure/authorizer"
)

// arity of each signable operation
var operationArgs = map[string]int{ //nolint:gochecknoglobals
	entity.OpInitialize:        2,
	entity.OpDeposit:           2,
	entity.OpWithdraw:          2,
	entity.OpEmergencyWithdraw: 2,
}

var signCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "sign <operation> <arg>...",
	Short: "Print authorization proof headers for a vault call.",
	Long: `Print the X-Timestamp, X-Nonce and X-Signature headers that authorize
one vault call, e.g.

  microvault sign deposit GUSER 100 --principal GUSER --secret s3cret
  microvault sign emergency_withdraw GRESCUE 60 --principal GADMIN --secret adm1n`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		principal, _ := cmd.Flags().GetString("principal")
		secret, _ := cmd.Flags().GetString("secret")

		call, err := buildCall(args)
		if err != nil {
			return err
		}

		proof := authorizer.NewProof(secret, principal, call, time.Now())

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "X-Timestamp: %s\n", proof.Timestamp)
		_, _ = fmt.Fprintf(out, "X-Nonce: %s\n", proof.Nonce)
		_, _ = fmt.Fprintf(out, "X-Signature: %s\n", proof.Signature)

		return nil
	},
}

// buildCall validates the operation and normalizes amount arguments the same
// way the server does before verifying a signature.
func buildCall(args []string) (entity.Call, error) {
	op := args[0]
	want, ok := operationArgs[op]
	if !ok {
		known := make([]string, 0, len(operationArgs))
		for name := range operationArgs {
			known = append(known, name)
		}
		return entity.Call{}, fmt.Errorf("unknown operation %q (known: %s)", op, strings.Join(known, ", "))
	}

	callArgs := args[1:]
	if len(callArgs) != want {
		return entity.Call{}, fmt.Errorf("%s takes %d arguments, got %d", op, want, len(callArgs))
	}

	if op != entity.OpInitialize {
		amount, err := entity.ParseAmount(callArgs[1])
		if err != nil {
			return entity.Call{}, err
		}
		callArgs = []string{callArgs[0], amount.String()}
	}

	return entity.NewCall(op, callArgs...), nil
}

func init() { //nolint:gochecknoinits
	signCmd.Flags().String("principal", "", "identity the proof is issued for")
	signCmd.Flags().String("secret", "", "signing secret of the principal")
	_ = signCmd.MarkFlagRequired("principal")
	_ = signCmd.MarkFlagRequired("secret")
	rootCmd.AddCommand(signCmd)
}
