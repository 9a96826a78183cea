// courier-sh is an interactive operator console speaking the node's
// ASCII protocol over a serial device or a websocket.
package main

//go-build: CGO_ENABLED=0

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/courierbots/courier.go/pkg/transport/serialline"
	"github.com/courierbots/courier.go/pkg/transport/wsline"
)

var errUsage = fmt.Errorf("wrong arguments, see 'help'")

var (
	device = flag.String("device", "", "Node serial device")
	baud   = flag.Int("baud", 0, "Serial baud rate, 0 for default")
	wsURL  = flag.String("ws", "", "Node websocket URL, e.g. ws://host:8080/")
)

func connect() (io.ReadWriteCloser, error) {
	if *wsURL != "" {
		return wsline.Dial(*wsURL, "")
	}
	if *device == "" {
		return nil, fmt.Errorf("either -device or -ws is required")
	}
	return serialline.Open(*device, *baud)
}

func main() {
	flag.Parse()

	conn, err := connect()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer conn.Close()

	shell := ishell.New()
	shell.Println("courier node console, 'help' for commands")

	// tail node events while the prompt is up
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			shell.Println("<< " + scanner.Text())
		}
		shell.Println("connection closed")
	}()

	send := func(c *ishell.Context, line string) {
		if _, err := io.WriteString(conn, line+"\n"); err != nil {
			c.Err(err)
		}
	}

	shell.AddCmd(&ishell.Cmd{
		Name: "mov",
		Help: "mov FWD|BCK|LFT|RGT|STP [durationMs]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(errUsage)
				return
			}
			ms := "0"
			if len(c.Args) > 1 {
				ms = c.Args[1]
			}
			send(c, "MOV:"+strings.ToUpper(c.Args[0])+":"+ms)
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "box",
		Help: "box ID open|close",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(errUsage)
				return
			}
			value := "CLOSE"
			if strings.EqualFold(c.Args[1], "open") {
				value = "OPEN"
			}
			send(c, "SRV:"+c.Args[0]+":"+value)
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "lcd",
		Help: "lcd ROW text... | lcd cls",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(errUsage)
				return
			}
			if strings.EqualFold(c.Args[0], "cls") {
				send(c, "LCD:CLS:")
				return
			}
			send(c, "LCD:"+c.Args[0]+":"+strings.Join(c.Args[1:], " "))
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "ping",
		Help: "ping the node",
		Func: func(c *ishell.Context) {
			send(c, "SYS:PING")
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "raw",
		Help: "raw LINE - send a protocol line verbatim",
		Func: func(c *ishell.Context) {
			send(c, strings.Join(c.Args, " "))
		},
	})

	shell.Run()
}
