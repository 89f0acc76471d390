package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/core/tx"
	"github.com/LeJamon/goPriceOracle/internal/core/tx/price"
	"github.com/LeJamon/goPriceOracle/internal/crypto"
	"github.com/LeJamon/goPriceOracle/internal/keystore"
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

var (
	// RPC client flags
	rpcURL     string
	rpcTimeout time.Duration
)

// rpcCmd represents the rpc command group
var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "RPC client commands",
	Long:  `Call JSON-RPC methods on a running priced node.`,
}

func init() {
	rootCmd.AddCommand(rpcCmd)
	rpcCmd.PersistentFlags().StringVar(&rpcURL, "url", "http://127.0.0.1:5005/", "node JSON-RPC endpoint")
	rpcCmd.PersistentFlags().DurationVar(&rpcTimeout, "timeout", 10*time.Second, "request timeout")
}

// callMethod posts method with params and returns the raw response body.
// An error status in the result is returned as an error.
func callMethod(ctx context.Context, method string, params interface{}) ([]byte, error) {
	request := rpc_types.Request{Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal parameters: %w", err)
		}
		request.Params = []json.RawMessage{raw}
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, rpcTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return body, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	result := gjson.GetBytes(body, "result")
	if result.Get("status").String() == "error" {
		return body, fmt.Errorf("RPC error [%d] %s: %s",
			result.Get("error_code").Int(), result.Get("error").String(), result.Get("error_message").String())
	}
	return body, nil
}

// executeMethod calls method and pretty prints the result
func executeMethod(cmd *cobra.Command, method string, params interface{}) error {
	body, err := callMethod(cmd.Context(), method, params)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}

func intArg(args []string, i int, name string) (int, bool, error) {
	if len(args) <= i {
		return 0, false, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %s", name, args[i])
	}
	return v, true, nil
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod(cmd, "ping", nil)
	},
}

var serverInfoCmd = &cobra.Command{
	Use:   "server_info",
	Short: "Get node information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod(cmd, "server_info", nil)
	},
}

var priceInfoCmd = &cobra.Command{
	Use:   "price_info",
	Short: "Get the current and average price",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod(cmd, "price_info", nil)
	},
}

var priceHistoryCmd = &cobra.Command{
	Use:   "price_history [limit] [offset]",
	Short: "Get snapshotted prices",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{}
		if v, ok, err := intArg(args, 0, "limit"); err != nil {
			return err
		} else if ok {
			params["limit"] = v
		}
		if v, ok, err := intArg(args, 1, "offset"); err != nil {
			return err
		} else if ok {
			params["offset"] = v
		}
		return executeMethod(cmd, "price_history", params)
	},
}

var priceEventsCmd = &cobra.Command{
	Use:   "price_events [limit]",
	Short: "Get archived price events",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{}
		if v, ok, err := intArg(args, 0, "limit"); err != nil {
			return err
		} else if ok {
			params["limit"] = v
		}
		return executeMethod(cmd, "price_events", params)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <tx_blob>",
	Short: "Submit a signed request blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod(cmd, "submit", map[string]interface{}{"tx_blob": args[0]})
	},
}

var (
	setPriceSeed    string
	setPriceKeyType string
	setPriceBlock   uint64
)

var setPriceCmd = &cobra.Command{
	Use:   "set_price <price>",
	Short: "Sign a set_prices request locally and submit it",
	Long: `Sign a set_prices request with the identity derived from --seed and
submit it. The block number defaults to the node's current height.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := fixed.Parse(args[0])
		if err != nil {
			return err
		}
		kt, err := crypto.ParseKeyType(setPriceKeyType)
		if err != nil {
			return err
		}
		id, err := keystore.FromSeedHex(kt, setPriceSeed)
		if err != nil {
			return err
		}

		block := setPriceBlock
		if block == 0 {
			body, err := callMethod(cmd.Context(), "server_info", nil)
			if err != nil {
				return err
			}
			block = gjson.GetBytes(body, "result.info.block_height").Uint()
		}

		call := price.NewSetPrices(p, block)
		if err := tx.Sign(call, id); err != nil {
			return err
		}
		blob, err := tx.Encode(call)
		if err != nil {
			return err
		}
		return executeMethod(cmd, "submit", map[string]interface{}{"tx_blob": strings.ToUpper(hex.EncodeToString(blob))})
	},
}

func init() {
	setPriceCmd.Flags().StringVar(&setPriceSeed, "seed", "", "hex seed of the signing identity")
	setPriceCmd.Flags().StringVar(&setPriceKeyType, "key-type", "ed25519", "key type of the seed")
	setPriceCmd.Flags().Uint64Var(&setPriceBlock, "block", 0, "block number to sign for")
	_ = setPriceCmd.MarkFlagRequired("seed")

	rpcCmd.AddCommand(
		pingCmd,
		serverInfoCmd,
		priceInfoCmd,
		priceHistoryCmd,
		priceEventsCmd,
		submitCmd,
		setPriceCmd,
	)
}
