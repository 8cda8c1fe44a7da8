// This file is part of BOSSWAVE.
//
// BOSSWAVE is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BOSSWAVE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with BOSSWAVE.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	log "github.com/cihub/seelog"
	"github.com/codegangsta/cli"
	"github.com/mgutz/ansi"

	"github.com/Taran2ul/proptree/config"
	"github.com/Taran2ul/proptree/internal/core"
	"github.com/Taran2ul/proptree/internal/objects"
	"github.com/Taran2ul/proptree"
)

func silencelog() {
	logger, err := log.LoggerFromConfigAsString(`
	<seelog>
		<outputs><console/></outputs>
	</seelog>`)
	if err == nil {
		log.ReplaceLogger(logger)
	}
}

// openContext loads --config (if given) and builds a fresh Context with
// every configured root pre-created.
func openContext(c *cli.Context) *proptree.Context {
	cfg := config.Default()
	if p := c.GlobalString("config"); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		cfg = loaded
	}
	ctx := proptree.NewContext()
	for _, r := range cfg.Roots {
		ctx.NewRoot(r)
	}
	return ctx
}

func actionGet(c *cli.Context) {
	path := c.Args().First()
	if path == "" {
		fmt.Println("usage: proptreectl get <path>")
		os.Exit(1)
	}
	ctx := openContext(c)
	defer ctx.Close()
	node := ctx.Tree.Find("global", strings.Split(path, "."))
	if node == nil {
		fmt.Println(ansi.ColorCode("red+b") + "not found" + ansi.ColorCode("reset"))
		os.Exit(1)
	}
	fmt.Printf("%s = %s\n", path, describeValue(ctx.Tree, node))
}

func actionSet(c *cli.Context) {
	args := c.Args()
	if len(args) < 3 {
		fmt.Println("usage: proptreectl set <path> <kind> <literal>")
		os.Exit(1)
	}
	path, kind, literal := args[0], args[1], args[2]
	value, err := objects.ParseValue(kind, literal)
	if err != nil {
		fmt.Println(ansi.ColorCode("red+b") + err.Error() + ansi.ColorCode("reset"))
		os.Exit(1)
	}
	ctx := openContext(c)
	defer ctx.Close()
	ctx.Tree.Set("global", path, value)
	fmt.Printf("%s%s set%s\n", ansi.ColorCode("green+b"), path, ansi.ColorCode("reset"))
}

func actionDump(c *cli.Context) {
	ctx := openContext(c)
	defer ctx.Close()
	root := ctx.Tree.Root("global")
	path := c.Args().First()
	if path != "" {
		root = ctx.Tree.Find("global", strings.Split(path, "."))
	}
	if root == nil {
		fmt.Println(ansi.ColorCode("red+b") + "not found" + ansi.ColorCode("reset"))
		os.Exit(1)
	}
	dumpNode(ctx.Tree, root, "")
}

func dumpNode(t *core.Tree, n *core.Node, indent string) {
	name := t.GetName(n)
	if name == "" {
		name = "(root)"
	}
	fmt.Printf("%s%s%s%s %s\n", indent, ansi.ColorCode("cyan+b"), name, ansi.ColorCode("reset"), describeValue(t, n))
	for _, child := range t.Children(n) {
		dumpNode(t, child, indent+"  ")
	}
}

func describeValue(t *core.Tree, n *core.Node) string {
	s := t.GetString(n)
	if s != "" {
		return s
	}
	return ansi.ColorCode("black+h") + "(void/dir)" + ansi.ColorCode("reset")
}

func actionWatch(c *cli.Context) {
	path := c.Args().First()
	if path == "" {
		fmt.Println("usage: proptreectl watch <path>")
		os.Exit(1)
	}
	ctx := openContext(c)
	defer ctx.Close()

	opts := core.NewSubscribeOptions().
		Path(path).
		Courier(ctx.Default).
		Trampoline(core.EventCallback(func(kind core.EventKind, rec *core.Record) {
			fmt.Printf("%s%s%s\n", ansi.ColorCode("yellow+b"), kind, ansi.ColorCode("reset"))
		}))
	if _, ok := ctx.Subscribe(opts); !ok {
		fmt.Println("subscribe failed")
		os.Exit(1)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	<-sigc
}

func main() {
	silencelog()
	app := cli.NewApp()
	app.Name = "proptreectl"
	app.Usage = "inspect and drive a standalone property tree"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a YAML config file",
			Value: "",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "get",
			Usage:  "print a node's current value",
			Action: actionGet,
		},
		{
			Name:   "set",
			Usage:  "set a node's value: set <path> <void|int|float|string> <literal>",
			Action: actionSet,
		},
		{
			Name:   "dump",
			Usage:  "print a subtree",
			Action: actionDump,
		},
		{
			Name:   "watch",
			Usage:  "subscribe to a path and print every record until interrupted",
			Action: actionWatch,
		},
	}
	app.Run(os.Args)
}
