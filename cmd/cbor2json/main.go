package main

import (
	"bytes"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"
	cbor "github.com/contentauth/c2pa-cbor"
)

type cli struct {
	ToJSON struct {
		In  string `arg:"" optional:"" help:"CBOR input file, - or empty for stdin."`
		Out string `short:"o" help:"JSON output file, empty for stdout."`
	} `cmd:"" help:"Decode a CBOR item and print it as JSON."`

	FromJSON struct {
		In      string `arg:"" optional:"" help:"JSON input file, - or empty for stdin."`
		Out     string `short:"o" help:"CBOR output file, empty for stdout."`
		Compact bool   `help:"Emit floats in the smallest lossless width."`
	} `cmd:"" help:"Parse JSON and emit the equivalent CBOR item."`
}

func main() {
	log.SetFlags(0)

	var args cli
	ctx := kong.Parse(&args,
		kong.Name("cbor2json"),
		kong.Description("Convert between CBOR items and JSON. Byte strings map to b64: prefixed JSON strings."),
		kong.UsageOnError(),
	)

	switch ctx.Command() {
	case "to-json", "to-json <in>":
		data, err := readInput(args.ToJSON.In)
		if err != nil {
			log.Fatal(err)
		}
		v, err := cbor.Decode(data)
		if err != nil {
			log.Fatal(err)
		}
		out, err := cbor.ToJSON(v)
		if err != nil {
			log.Fatal(err)
		}
		if err := writeOutput(args.ToJSON.Out, []byte(out+"\n")); err != nil {
			log.Fatal(err)
		}
	case "from-json", "from-json <in>":
		data, err := readInput(args.FromJSON.In)
		if err != nil {
			log.Fatal(err)
		}
		v, err := cbor.FromJSON(data)
		if err != nil {
			log.Fatal(err)
		}
		var out []byte
		if args.FromJSON.Compact {
			out, err = marshalCompact(v)
		} else {
			out, err = cbor.Encode(v)
		}
		if err != nil {
			log.Fatal(err)
		}
		if err := writeOutput(args.FromJSON.Out, out); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown command %q", ctx.Command())
	}
}

func marshalCompact(v cbor.Value) ([]byte, error) {
	var buf bytes.Buffer
	e := cbor.NewEncoder(&buf)
	e.CompactFloats = true
	if err := v.MarshalCBOR(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
