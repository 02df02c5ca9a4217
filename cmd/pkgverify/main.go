// Command pkgverify checks a package file's header signatures and
// digests against a trusted keyring and prints the resulting verdict.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/quay/rpmverify/header"
	"github.com/quay/rpmverify/keyring"
	"github.com/quay/rpmverify/keystash"
	"github.com/quay/rpmverify/reader"
	"github.com/quay/rpmverify/sig"
)

func main() {
	app := &cli.App{
		Name:  "pkgverify",
		Usage: "check a package's header signatures and digests",
		Commands: []*cli.Command{
			checkCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "verify one package file",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "keyring",
			Usage: "path to an armored OpenPGP public keyring",
		},
		&cli.BoolFlag{Name: "no-sha256"},
		&cli.BoolFlag{Name: "no-sha1"},
		&cli.BoolFlag{Name: "no-rsa"},
		&cli.BoolFlag{Name: "no-dsa"},
		&cli.BoolFlag{Name: "no-md5"},
		&cli.BoolFlag{Name: "no-pgp"},
		&cli.BoolFlag{Name: "no-gpg"},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "record a Prometheus verdict counter for this run",
		},
	},
	Action: func(c *cli.Context) error {
		path := c.Args().Get(0)
		if path == "" {
			return cli.Exit("check requires a package file path", 2)
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		var kr sig.KeyRing = keyring.Empty()
		if kp := c.String("keyring"); kp != "" {
			kf, err := os.Open(kp)
			if err != nil {
				return err
			}
			defer kf.Close()
			ring, err := keyring.ReadArmored(kf)
			if err != nil {
				return fmt.Errorf("keyring: %w", err)
			}
			kr = ring
		}

		rd := &reader.Reader{
			Policy: sig.Policy{
				NoSHA256: c.Bool("no-sha256"),
				NoSHA1:   c.Bool("no-sha1"),
				NoRSA:    c.Bool("no-rsa"),
				NoDSA:    c.Bool("no-dsa"),
				NoMD5:    c.Bool("no-md5"),
				NoPGP:    c.Bool("no-pgp"),
				NoGPG:    c.Bool("no-gpg"),
			},
			Keyring: kr,
			Mapper:  &reader.ErrorMapper{Stash: new(keystash.Stash)},
		}

		ctx := context.Background()
		var res *reader.Result
		if c.Bool("metrics") {
			res, err = reader.NewInstrumented(rd).Read(ctx, f)
		} else {
			res, err = rd.Read(ctx, f)
		}
		if err != nil {
			return err
		}

		printResult(c.App.Writer, res)
		if res.Verdict == sig.Fail {
			return cli.Exit("", 1)
		}
		return nil
	},
}

func printResult(w io.Writer, res *reader.Result) {
	fmt.Fprintf(w, "verdict: %s\n", res.Verdict)
	if res.KeyID != 0 {
		fmt.Fprintf(w, "key id:  %08x\n", res.KeyID)
	}
	if res.Message != "" {
		fmt.Fprintf(w, "message: %s\n", res.Message)
	}
	if res.Header == nil {
		return
	}
	if _, payload, ok := res.Header.Get(header.TagName); ok {
		fmt.Fprintf(w, "name:    %s\n", trimNUL(payload))
	}
}

func trimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
