package main

import "fmt"

type registerCmd struct {
	client    *client
	Authority string `long:"authority" required:"true"`
	Name      string `long:"name" required:"true"`
}

func (c *registerCmd) Execute(args []string) error {
	resp, err := c.client.do("POST", "/api/miners", nil, map[string]any{
		"authority": c.Authority,
		"name":      c.Name,
	})
	if err != nil {
		return err
	}
	printResult(resp)
	return nil
}

type mineCmd struct {
	client         *client
	Address        string   `long:"address" required:"true" description:"miner address"`
	MinerAuthority string   `long:"miner-authority" required:"true"`
	TapeAddress    string   `long:"tape-address" required:"true"`
	DigestHex      string   `long:"digest-hex" required:"true" description:"16-byte solver output"`
	NonceHex       string   `long:"nonce-hex" required:"true" description:"8-byte solver nonce"`
	RecallDataHex  string   `long:"recall-data-hex" required:"true" description:"128-byte recalled segment"`
	RecallProofHex []string `long:"recall-proof-hex" required:"true" description:"pass 18 times, leaf-to-root order"`
}

func (c *mineCmd) Execute(args []string) error {
	resp, err := c.client.do("POST", "/api/miners/"+c.Address+"/mine", nil, map[string]any{
		"miner_authority":  c.MinerAuthority,
		"tape_address":     c.TapeAddress,
		"digest_hex":       c.DigestHex,
		"nonce_hex":        c.NonceHex,
		"recall_data_hex":  c.RecallDataHex,
		"recall_proof_hex": c.RecallProofHex,
	})
	if err != nil {
		return err
	}
	printResult(resp)
	return nil
}

type claimCmd struct {
	client      *client
	Address     string `long:"address" required:"true"`
	Authority   string `long:"authority" required:"true"`
	Beneficiary string `long:"beneficiary" required:"true"`
	Amount      uint64 `long:"amount" required:"true"`
}

func (c *claimCmd) Execute(args []string) error {
	resp, err := c.client.do("POST", "/api/miners/"+c.Address+"/claim", nil, map[string]any{
		"authority":   c.Authority,
		"beneficiary": c.Beneficiary,
		"amount":      c.Amount,
	})
	if err != nil {
		return err
	}
	printResult(resp)
	return nil
}

type closeCmd struct {
	client    *client
	Address   string `long:"address" required:"true"`
	Authority string `long:"authority" required:"true"`
}

func (c *closeCmd) Execute(args []string) error {
	_, err := c.client.do("DELETE", "/api/miners/"+c.Address, nil, map[string]any{
		"authority": c.Authority,
	})
	if err != nil {
		return err
	}
	fmt.Println("closed")
	return nil
}

// advanceCmd exists only so `tapedrive-cli advance --help` explains
// itself: block/epoch advance is folded into Mine (spec.md's wire
// table reserves a discriminator for it, but §4 never defines a
// standalone operation — see internal/core/wire.ErrNotAStandaloneOperation).
type advanceCmd struct{}

func (c *advanceCmd) Execute(args []string) error {
	fmt.Println("advance has no standalone endpoint: block/epoch advance happens automatically inside `mine`")
	return nil
}
