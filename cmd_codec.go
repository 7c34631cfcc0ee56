package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kmeaw/huffkit/huffman"
)

var analyzeCompare bool
var analyzeJSON bool

var encodePacked bool
var encodeTableFile string
var encodeSave string

var decodePacked bool
var decodeTableFile string
var decodeLoad string

// textArg joins the arguments into one text, falling back to the sample.
func textArg(config *Config, args []string) string {
	if len(args) == 0 {
		return config.SampleText
	}
	return strings.Join(args, " ")
}

func readTableFile(filename string) (*huffman.Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	t := &huffman.Table{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("cannot read table %q: %w", filename, err)
	}
	return t, nil
}

func writeTableFile(filename string, t *huffman.Table) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), 0666)
}

// loadTable reads a table from a file or from the table store.
func loadTable(ctx context.Context, config *Config, filename, name string) (*huffman.Table, error) {
	switch {
	case filename != "":
		return readTableFile(filename)
	case name != "":
		store, err := OpenTableStore(ctx, config)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx, name)
	}
	return nil, errors.New("need --table FILE or --load NAME")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Show symbol frequencies, codes and compression of text",
	Long: `Counts the symbols of the text, builds the code table and
reports how many bits the text takes. With --compare the
size zstd achieves on the same input is printed as well.

Example:
  huffkit analyze --compare "CITRONTRESCONTENT"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		report, err := NewReport(textArg(config, args), terminalWidth(80), analyzeCompare)
		if err != nil {
			return err
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		return report.Print(os.Stdout)
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Encode text into a bit string",
	Long: `Builds a code table for the text and prints the encoded bits.
--packed prints the packed bytes in hex instead, --table saves the
code table as JSON and --save keeps it in the table store.

Example:
  huffkit encode --table abra.json abracadabra
  huffkit encode --packed --save abra abracadabra`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		text := textArg(config, args)
		_, table, err := huffman.Build(text)
		if err != nil {
			return err
		}

		if encodePacked {
			data, err := huffman.Compress(table, text)
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(data))
		} else {
			bits, err := huffman.Encode(table, text)
			if err != nil {
				return err
			}
			fmt.Println(bits)
		}

		if encodeTableFile != "" {
			if err := writeTableFile(encodeTableFile, table); err != nil {
				return err
			}
			log.Info().Str("file", encodeTableFile).Int("symbols", table.Len()).Msg("table written")
		}

		if encodeSave != "" {
			ctx := cmd.Context()
			store, err := OpenTableStore(ctx, config)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(ctx, encodeSave, table); err != nil {
				return err
			}
			log.Info().Str("name", encodeSave).Int("symbols", table.Len()).Msg("table saved")
		}

		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode BITS",
	Args:  cobra.ExactArgs(1),
	Short: "Decode a bit string with a saved table",
	Long: `Decodes BITS with a table written by encode --table or kept by
encode --save. With --packed BITS is the hex output of encode --packed.

Example:
  huffkit decode --table abra.json "$(huffkit encode --table abra.json abracadabra)"
  huffkit decode --packed --load abra "$(huffkit encode --packed --save abra abracadabra)"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		table, err := loadTable(cmd.Context(), config, decodeTableFile, decodeLoad)
		if err != nil {
			return err
		}

		var text string
		if decodePacked {
			data, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("bad hex input: %w", err)
			}
			text, err = huffman.Decompress(table, data)
			if err != nil {
				return err
			}
		} else {
			text, err = huffman.Decode(table, args[0])
			if err != nil {
				return err
			}
		}

		fmt.Println(text)
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [text]",
	Short: "Draw the code tree of text",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		root, _, err := huffman.Build(textArg(config, args))
		if err != nil {
			return err
		}

		return huffman.PrintTree(os.Stdout, root, terminalWidth(80))
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd, encodeCmd, decodeCmd, treeCmd)

	analyzeCmd.Flags().BoolVarP(&analyzeCompare, "compare", "c", false, "compare with zstd")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")

	encodeCmd.Flags().BoolVarP(&encodePacked, "packed", "p", false, "print packed bytes as hex")
	encodeCmd.Flags().StringVarP(&encodeTableFile, "table", "t", "", "write the code table to this JSON file")
	encodeCmd.Flags().StringVarP(&encodeSave, "save", "s", "", "keep the code table in the table store under this name")

	decodeCmd.Flags().BoolVarP(&decodePacked, "packed", "p", false, "BITS is hex of packed bytes")
	decodeCmd.Flags().StringVarP(&decodeTableFile, "table", "t", "", "read the code table from this JSON file")
	decodeCmd.Flags().StringVarP(&decodeLoad, "load", "l", "", "load the code table from the table store")
}

// vim: ai:ts=8:sw=8:noet:syntax=go
