package main

import (
	"fmt"
	"io"
	"os"
)

type createCmd struct {
	client    *client
	Authority string `long:"authority" required:"true" description:"32-byte hex authority address"`
	Name      string `long:"name" required:"true" description:"tape name, truncated/padded to 32 bytes"`
	HeaderHex string `long:"header-hex" description:"optional 128-byte hex header"`
}

func (c *createCmd) Execute(args []string) error {
	resp, err := c.client.do("POST", "/api/tapes", nil, map[string]any{
		"authority":  c.Authority,
		"name":       c.Name,
		"header_hex": c.HeaderHex,
	})
	if err != nil {
		return err
	}
	printResult(resp)
	return nil
}

type writeCmd struct {
	client    *client
	Address   string `long:"address" required:"true" description:"tape address (hex)"`
	Authority string `long:"authority" required:"true" description:"authority address (hex), sent as X-Authority"`
	File      string `long:"file" description:"file to write; reads stdin if omitted"`
}

func (c *writeCmd) Execute(args []string) error {
	var data []byte
	var err error
	if c.File != "" {
		data, err = os.ReadFile(c.File)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	resp, err := c.client.doRaw("POST", "/api/tapes/"+c.Address+"/write",
		map[string]string{"X-Authority": c.Authority}, data)
	if err != nil {
		return err
	}
	printResult(resp)
	return nil
}

type updateCmd struct {
	client        *client
	Address       string   `long:"address" required:"true"`
	Authority     string   `long:"authority" required:"true"`
	SegmentNumber uint64   `long:"segment" required:"true"`
	OldDataHex    string   `long:"old-data-hex" required:"true"`
	NewDataHex    string   `long:"new-data-hex" required:"true"`
	ProofHex      []string `long:"proof-hex" required:"true" description:"pass 18 times, leaf-to-root order"`
}

func (c *updateCmd) Execute(args []string) error {
	resp, err := c.client.do("POST", "/api/tapes/"+c.Address+"/update", nil, map[string]any{
		"authority":      c.Authority,
		"segment_number": c.SegmentNumber,
		"old_data_hex":   c.OldDataHex,
		"new_data_hex":   c.NewDataHex,
		"proof_hex":      c.ProofHex,
	})
	if err != nil {
		return err
	}
	printResult(resp)
	return nil
}

type finalizeCmd struct {
	client    *client
	Address   string `long:"address" required:"true"`
	Authority string `long:"authority" required:"true"`
	TailHex   string `long:"tail-hex"`
}

func (c *finalizeCmd) Execute(args []string) error {
	resp, err := c.client.do("POST", "/api/tapes/"+c.Address+"/finalize", nil, map[string]any{
		"authority": c.Authority,
		"tail_hex":  c.TailHex,
	})
	if err != nil {
		return err
	}
	printResult(resp)
	return nil
}
