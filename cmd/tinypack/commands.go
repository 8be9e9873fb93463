package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wippyai/tinypacks/bridge"
	"github.com/wippyai/tinypacks/codec"
	"github.com/wippyai/tinypacks/packfile"
	"github.com/wippyai/tinypacks/value"
)

func runEncode(env *cliEnv, args []string) error {
	fs, verbose := newFlags(env, "encode")
	from := fs.String("from", "", "input format: json, yaml or cbor (default from extension, else json)")
	double := fs.Bool("double", false, "pack reals at double precision")
	compress := fs.String("compress", "none", "compress the output: none, zstd or lz4")
	out := fs.StringP("output", "o", "", "output file (default stdout)")
	if err := parse(fs, verbose, args); err != nil {
		return err
	}
	path := fs.Arg(0)

	compression, err := packfile.ParseCompression(*compress)
	if err != nil {
		return err
	}
	data, err := readInput(env, path, false)
	if err != nil {
		return err
	}

	var v value.Value
	switch format := formatFor(*from, path); format {
	case "json":
		v, err = bridge.FromJSON(data)
	case "yaml":
		v, err = bridge.FromYAML(data)
	case "cbor":
		v, err = bridge.FromCBOR(data)
	default:
		return fmt.Errorf("unknown input format %q", format)
	}
	if err != nil {
		return err
	}

	enc := codec.NewEncoder(codec.WithDoublePrecision(*double))
	packed, err := packfile.Marshal([]value.Value{v},
		packfile.WithEncoder(enc),
		packfile.WithCompression(compression))
	if err != nil {
		return err
	}

	if *out == "" && env.tty {
		fmt.Fprintln(env.stdout, spacedHex(packed))
		return nil
	}
	return writeOutput(env, *out, packed)
}

func runDecode(env *cliEnv, args []string) error {
	fs, verbose := newFlags(env, "decode")
	strict := fs.Bool("strict", false, "reject bytes after the first element")
	all := fs.Bool("all", false, "decode every concatenated element")
	hexText := fs.Bool("hex", false, "input is hex text")
	to := fs.String("to", "text", "output format: text, json or cbor")
	out := fs.StringP("output", "o", "", "output file (default stdout)")
	if err := parse(fs, verbose, args); err != nil {
		return err
	}

	data, err := readInput(env, fs.Arg(0), *hexText)
	if err != nil {
		return err
	}
	body, _, err := packfile.Body(data)
	if err != nil {
		return err
	}

	dec := codec.NewDecoder(codec.WithStrict(*strict))
	var values []value.Value
	if *all {
		values, err = dec.DecodeAll(body)
	} else {
		var v value.Value
		v, err = dec.DecodeFirst(body)
		values = []value.Value{v}
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, v := range values {
		switch *to {
		case "text":
			buf.WriteString(value.Format(v))
			buf.WriteByte('\n')
		case "json":
			b, err := bridge.ToJSON(v)
			if err != nil {
				return err
			}
			if err := json.Indent(&buf, b, "", "  "); err != nil {
				return err
			}
			buf.WriteByte('\n')
		case "cbor":
			b, err := bridge.ToCBOR(v)
			if err != nil {
				return err
			}
			buf.Write(b)
		default:
			return fmt.Errorf("unknown output format %q", *to)
		}
	}
	if *to == "cbor" && *out == "" && env.tty {
		fmt.Fprintln(env.stdout, spacedHex(buf.Bytes()))
		return nil
	}
	return writeOutput(env, *out, buf.Bytes())
}

func runDump(env *cliEnv, args []string) error {
	fs, verbose := newFlags(env, "dump")
	hexText := fs.Bool("hex", false, "input is hex text")
	if err := parse(fs, verbose, args); err != nil {
		return err
	}

	data, err := readInput(env, fs.Arg(0), *hexText)
	if err != nil {
		return err
	}
	body, _, err := packfile.Body(data)
	if err != nil {
		return err
	}
	nodes, err := walk(body)
	printTree(env.stdout, nodes, paletteFor(env.tty))
	return err
}

// demoValue is the sample mapping used by the demo command.
func demoValue() value.Value {
	return value.Map{
		{Key: value.String("text"), Value: value.String("Hello world!")},
		{Key: value.Bytes("bin"), Value: value.Bytes("ary")},
		{Key: value.String("status"), Value: value.Bool(true)},
		{Key: value.String("not_status"), Value: value.Bool(false)},
		{Key: value.String("avg"), Value: value.Real(0.5)},
		{Key: value.String("count"), Value: value.Int(123)},
		{Key: value.String("countdown"), Value: value.Int(-123)},
	}
}

func runDemo(env *cliEnv, args []string) error {
	fs, verbose := newFlags(env, "demo")
	if err := parse(fs, verbose, args); err != nil {
		return err
	}

	data := demoValue()
	fmt.Fprintf(env.stdout, "Data:\n  %s\n\n", value.Format(data))

	packed, err := codec.Encode(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Packed (%d bytes):\n  %s\n\n", len(packed), spacedHex(packed))

	unpacked, err := codec.DecodeFirst(packed)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Unpacked:\n  %s\n\n", value.Format(unpacked))

	digest, err := codec.Digest(unpacked)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Digest:\n  %s\n", digest)
	return nil
}

func spacedHex(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(hex.EncodeToString([]byte{c}))
	}
	return sb.String()
}

func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex input: %w", err)
	}
	return b, nil
}
