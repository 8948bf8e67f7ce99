// Package cli — keycmd.go implements the "encode-key" and "decode-key"
// utilities around the API-key obfuscation used in the control Gist.
// Admins encode a fresh Gemini key before publishing it; decode-key is
// the sanity check for a value already in the Gist.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/keycodec"
	"github.com/progriv/progriv/internal/model"
)

// NewEncodeKeyCommand creates the "encode-key" cobra command.
func NewEncodeKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode-key <plain-key>",
		Short: "Encode an API key for the control Gist",

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			encoded := keycodec.Encode(args[0])
			printKeyResult("encoded", encoded)
			return nil
		},
	}
}

// NewDecodeKeyCommand creates the "decode-key" cobra command.
func NewDecodeKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-key <encoded-key>",
		Short: "Decode an obfuscated API key",

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			decoded := keycodec.Decode(args[0])
			if decoded == "" {
				return model.NewCLIError(model.ExitGeneralError,
					"value does not decode to an API key")
			}
			printKeyResult("decoded", decoded)
			return nil
		},
	}
}

// printKeyResult prints the transformed key, bare in text mode so it
// can be piped straight into the Gist editor.
func printKeyResult(field, value string) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]string{field: value}, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Println(value)
}
