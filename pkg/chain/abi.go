package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// contractABI covers the ERC-20 surface plus the marketplace contract
// methods. Both contracts are addressed through the same packer; the
// Call.Contract field selects the target.
const contractABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"name":"name","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"setArtworkForSale","type":"function","stateMutability":"nonpayable","inputs":[{"name":"artworkId","type":"uint256"},{"name":"artist","type":"address"},{"name":"price","type":"uint256"}],"outputs":[]},
	{"name":"purchaseArtwork","type":"function","stateMutability":"nonpayable","inputs":[{"name":"artworkId","type":"uint256"}],"outputs":[]},
	{"name":"verifyArtist","type":"function","stateMutability":"nonpayable","inputs":[{"name":"artist","type":"address"}],"outputs":[]}
]`

var parsedABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		panic(fmt.Sprintf("invalid contract ABI: %v", err))
	}
	return parsed
}

// PackCall encodes a call's method and params into calldata.
func PackCall(call Call) ([]byte, error) {
	if _, ok := parsedABI.Methods[call.Method]; !ok {
		return nil, fmt.Errorf("unknown contract method %q", call.Method)
	}

	data, err := parsedABI.Pack(call.Method, call.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", call.Method, err)
	}
	return data, nil
}

// UnpackBigInt decodes a single uint256 return value.
func UnpackBigInt(method string, data []byte) (*big.Int, error) {
	values, err := parsedABI.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected %s result arity %d", method, len(values))
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", method, values[0])
	}
	return value, nil
}

// UnpackUint8 decodes a single uint8 return value.
func UnpackUint8(method string, data []byte) (uint8, error) {
	values, err := parsedABI.Unpack(method, data)
	if err != nil {
		return 0, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("unexpected %s result arity %d", method, len(values))
	}
	value, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected %s result type %T", method, values[0])
	}
	return value, nil
}

// UnpackString decodes a single string return value.
func UnpackString(method string, data []byte) (string, error) {
	values, err := parsedABI.Unpack(method, data)
	if err != nil {
		return "", fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(values) != 1 {
		return "", fmt.Errorf("unexpected %s result arity %d", method, len(values))
	}
	value, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected %s result type %T", method, values[0])
	}
	return value, nil
}
