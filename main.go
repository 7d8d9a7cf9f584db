package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"golang.org/x/tools/imports"
	"gopkg.in/yaml.v2"
)

const moduleInfoFile = "Tigo Module Information"

type tigoModule struct {
	Package string `yaml:"Package"`
	Output  string `yaml:"Output"`
}

func printError(err error) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		tracerr.PrintSourceColor(err)
	} else {
		tracerr.Print(err)
	}
}

func parseDirectory(dir string) []AST {
	var asts []AST

	fis, err := os.ReadDir(dir)
	if err != nil {
		printError(tracerr.Wrap(err))
		os.Exit(1)
	}

	for _, fi := range fis {
		if strings.HasSuffix(fi.Name(), ".tigo") {
			asts = append(asts, parseFile(fi.Name()))
		}
	}

	return asts
}

func parseFile(name string) AST {
	handle, err := os.Open(name)
	if err != nil {
		printError(tracerr.Wrap(err))
		os.Exit(1)
	}
	defer handle.Close()

	l := NewLexer(handle, name)
	p := NewParser(l)
	err = p.Parse()

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	return p.ast
}

func readModuleInfo() tigoModule {
	data, err := os.ReadFile(moduleInfoFile)
	if err != nil {
		fmt.Printf("error reading %s: %s\n", moduleInfoFile, err)
		os.Exit(1)
	}

	var doc tigoModule
	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		fmt.Printf("error reading %s: %s\n", moduleInfoFile, err)
		os.Exit(1)
	}

	return doc
}

func main() {
	app := &cli.App{
		Name:  "tigo",
		Usage: "type-indexed enum compiler",
		ExitErrHandler: func(context *cli.Context, err error) {
			if err != nil {
				log.Fatalf("error with tigo: %s", err)
			}
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "init a directory",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						fmt.Printf("no package name provided")
						os.Exit(1)
					}
					yml := tigoModule{
						Package: name,
						Output:  name + "_tigo.go",
					}
					fi, err := os.Create(moduleInfoFile)
					if err != nil {
						fmt.Printf("error creating %s: %s", moduleInfoFile, err)
						os.Exit(1)
					}
					defer fi.Close()

					out, err := yaml.Marshal(yml)
					if err != nil {
						fmt.Printf("error creating %s: %s", moduleInfoFile, err)
						os.Exit(1)
					}

					_, err = fi.Write(out)
					if err != nil {
						fmt.Printf("error creating %s: %s", moduleInfoFile, err)
						os.Exit(1)
					}

					return nil
				},
			},
			{
				Name:  "build",
				Usage: "expand every .tigo file in the directory into Go declarations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name: "output",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Value: false,
					},
				},
				Action: func(c *cli.Context) error {
					doc := readModuleInfo()
					out := c.String("output")
					if out == "" {
						out = doc.Output
					}
					if out == "" {
						out = doc.Package + "_tigo.go"
					}

					asts := parseDirectory("./")

					em := NewEmitter(settings{
						packageName: doc.Package,
						warnf: func(format string, args ...interface{}) {
							fmt.Fprintf(os.Stderr, "tigo: warning: "+format+"\n", args...)
						},
					})
					decls, dispatches, err := em.Expand(asts)
					if err != nil {
						printError(err)
						os.Exit(1)
					}

					formatted, err := imports.Process(out, []byte(decls), nil)
					if err != nil {
						printError(tracerr.Wrap(err))
						os.Exit(1)
					}

					if c.Bool("dump") {
						fmt.Println(string(formatted))
					} else {
						if err := os.WriteFile(out, formatted, 0o644); err != nil {
							printError(tracerr.Wrap(err))
							os.Exit(1)
						}
					}

					// Inline code is the caller's to place; it goes to
					// stdout, never into the generated file.
					for _, d := range dispatches {
						fmt.Println(d)
					}

					return nil
				},
			},
			{
				Name:  "dump",
				Usage: "parse a file and pretty-print its declaration tree",
				Action: func(c *cli.Context) error {
					file := c.Args().Get(0)
					if file == "" {
						fmt.Printf("no file provided")
						os.Exit(1)
					}
					ast := parseFile(file)
					repr.Println(ast)
					return nil
				},
			},
			{
				Name:  "dispatch",
				Usage: "expand a single dispatch block for inline embedding",
				Action: func(c *cli.Context) error {
					file := c.Args().Get(0)
					if file == "" {
						fmt.Printf("no file provided")
						os.Exit(1)
					}
					ast := parseFile(file)

					em := NewEmitter(settings{
						packageName: "main",
						warnf: func(format string, args ...interface{}) {
							fmt.Fprintf(os.Stderr, "tigo: warning: "+format+"\n", args...)
						},
					})
					_, dispatches, err := em.Expand([]AST{ast})
					if err != nil {
						printError(err)
						os.Exit(1)
					}

					for _, d := range dispatches {
						fmt.Println(d)
					}

					return nil
				},
			},
		},
	}
	app.Run(os.Args)
}
