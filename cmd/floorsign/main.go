package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"strconv"

	"floorsign"
	"floorsign/bmp"
	"floorsign/link"
	"floorsign/store"

	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func newController(c *cli.Context) (*floorsign.Controller, func(), error) {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	var index *floorsign.FingerprintIndex
	if db := c.String("db"); db != "" {
		var err error
		if index, err = floorsign.NewFingerprintIndex(db); err != nil {
			return nil, nil, err
		}
	}

	st := store.NewDirStore(c.String("root"))
	ctrl := floorsign.New(st, index, logger)

	cleanup := func() {
		st.Close()
		if index != nil {
			index.Close()
		}
	}

	return ctrl, cleanup, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "floorsign"
	app.Usage = "floor-display image asset management utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "root",
			EnvVars: []string{"FLOORSIGN_ROOT"},
			Value:   cwd,
			Usage:   "path to the store root directory",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"FLOORSIGN_DB"},
			Usage:   "path to the fingerprint index, staleness checking off when unset",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "scan",
			Usage:       "Prime the transcoding cache for every bitmap at the store root",
			Description: "",
			Action: func(c *cli.Context) error {
				ctrl, cleanup, err := newController(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer cleanup()

				if err := ctrl.Scan(); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "encode",
			Usage:     "Ensure the encoded sibling of one bitmap exists",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				ctrl, cleanup, err := newController(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer cleanup()

				b := ctrl.GetBitmap(c.Args().First(), 0, 0)
				if b.Type != floorsign.BitmapMonochromeCompressed {
					return cli.Exit(fmt.Sprintf("unable to encode %s", c.Args().First()), 1)
				}

				return nil
			},
		},
		{
			Name:      "runs",
			Usage:     "Print the run records of an encoded bitmap",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				ctrl, cleanup, err := newController(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer cleanup()

				records, err := ctrl.Runs(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				for _, r := range records {
					fmt.Printf("%d\t%d\t%d\n", r.Row, r.Start, r.End)
				}

				return nil
			},
		},
		{
			Name:      "convert",
			Usage:     "Convert an image into the monochrome bitmap format",
			ArgsUsage: "SOURCE DEST",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				in, err := os.Open(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer in.Close()

				m, _, err := image.Decode(in)
				if err != nil {
					return cli.Exit(err, 1)
				}

				out, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer out.Close()

				if err := bmp.Encode(out, m); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "color",
			Usage: "Get or set the display color, e.g. 0xf800",
			Action: func(c *cli.Context) error {
				ctrl, cleanup, err := newController(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer cleanup()

				if c.NArg() == 0 {
					fmt.Printf("0x%04x\n", ctrl.MonoColor())
					return nil
				}

				v, err := strconv.ParseUint(c.Args().First(), 0, 16)
				if err != nil {
					return cli.Exit(err, 1)
				}
				if err := ctrl.SetMonoColor(uint16(v)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "map",
			Usage: "Manage the floor-to-bitmap mapping table",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "file",
					Value: "/mapping.ini",
					Usage: "store path of the mapping table",
				},
			},
			Subcommands: []*cli.Command{
				{
					Name:  "init",
					Usage: "Write a blank 32-floor table",
					Action: func(c *cli.Context) error {
						ctrl, cleanup, err := newController(c)
						if err != nil {
							return cli.Exit(err, 1)
						}
						defer cleanup()

						if err := ctrl.InitMappings(c.String("file")); err != nil {
							return cli.Exit(err, 1)
						}

						return nil
					},
				},
				{
					Name:  "list",
					Usage: "Print every slot",
					Action: func(c *cli.Context) error {
						ctrl, cleanup, err := newController(c)
						if err != nil {
							return cli.Exit(err, 1)
						}
						defer cleanup()

						t, err := ctrl.LoadMappings(c.String("file"))
						if err != nil {
							return cli.Exit(err, 1)
						}
						for i := 0; i < floorsign.NumFloors; i++ {
							m := t.Slot(i)
							fmt.Printf("%s\t%s\t%s\n", m.FloorNo, m.BitmapName, m.BitmapName2)
						}

						return nil
					},
				},
				{
					Name:      "set",
					Usage:     "Assign bitmaps to a floor",
					ArgsUsage: "FLOOR NAME [NAME2]",
					Action: func(c *cli.Context) error {
						if c.NArg() < 2 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						ctrl, cleanup, err := newController(c)
						if err != nil {
							return cli.Exit(err, 1)
						}
						defer cleanup()

						if _, err := ctrl.LoadMappings(c.String("file")); err != nil {
							return cli.Exit(err, 1)
						}
						if err := ctrl.SetFloorMapping(c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)); err != nil {
							return cli.Exit(err, 1)
						}
						if err := ctrl.CommitMappings(c.String("file")); err != nil {
							return cli.Exit(err, 1)
						}

						return nil
					},
				},
				{
					Name:      "remove",
					Usage:     "Clear the bitmaps of a floor",
					ArgsUsage: "FLOOR",
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						ctrl, cleanup, err := newController(c)
						if err != nil {
							return cli.Exit(err, 1)
						}
						defer cleanup()

						if _, err := ctrl.LoadMappings(c.String("file")); err != nil {
							return cli.Exit(err, 1)
						}
						if err := ctrl.RemoveFloorMapping(c.Args().First()); err != nil {
							return cli.Exit(err, 1)
						}
						if err := ctrl.CommitMappings(c.String("file")); err != nil {
							return cli.Exit(err, 1)
						}

						return nil
					},
				},
				{
					Name:      "get",
					Usage:     "Print the bitmaps of a floor",
					ArgsUsage: "FLOOR",
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						ctrl, cleanup, err := newController(c)
						if err != nil {
							return cli.Exit(err, 1)
						}
						defer cleanup()

						if _, err := ctrl.LoadMappings(c.String("file")); err != nil {
							return cli.Exit(err, 1)
						}
						a, b, err := ctrl.GetFloorMapping(c.Args().First())
						if err != nil {
							return cli.Exit(err, 1)
						}
						fmt.Printf("%s\t%s\n", a, b)

						return nil
					},
				},
			},
		},
		{
			Name:      "push",
			Usage:     "Send a stored file to the peer over a serial device",
			ArgsUsage: "FILE DEVICE",
			Action:    transfer(func(conn *link.Conn, file string) error { return conn.Upload(file, true) }),
		},
		{
			Name:      "pull",
			Usage:     "Receive a pushed file from the peer over a serial device",
			ArgsUsage: "FILE DEVICE",
			Action:    transfer(func(conn *link.Conn, file string) error { return conn.Download(file, true) }),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func transfer(f func(*link.Conn, string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < 2 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		logger := log.New(io.Discard, "", 0)
		if c.Bool("verbose") {
			logger.SetOutput(os.Stderr)
		}

		dev, err := os.OpenFile(c.Args().Get(1), os.O_RDWR, 0)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer dev.Close()

		st := store.NewDirStore(c.String("root"))
		defer st.Close()

		if err := f(link.New(dev, st, 0, logger), c.Args().Get(0)); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	}
}
