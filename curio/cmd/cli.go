// Command-line client for a running curio server
package main

import (
	"context"
	"curio/curio/config"
	"curio/curio/utils/color"
	"curio/curio/utils/logging"
	wstypes "curio/curio/utils/types"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	args := os.Args[1:]
	if len(args) < 1 || args[0] != "connect" {
		fmt.Println("Curio CLI usage:")
		fmt.Println("  curio connect [ws-url]   # open a chat session (token from CURIO_TOKEN)")
		os.Exit(1)
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		initMarkdown()
	} else {
		color.Disable()
	}

	url := serverURL(cfg.ServerAddr, args[1:])
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts *websocket.DialOptions
	if token := strings.TrimSpace(os.Getenv("CURIO_TOKEN")); token != "" {
		opts = &websocket.DialOptions{HTTPHeader: http.Header{"Authorization": {"Bearer " + token}}}
	}
	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		logging.ErrorLogger.Error("websocket dial failed", zap.String("url", url), zap.Error(err))
		fmt.Println(color.ColorError("could not connect to " + url + ": " + err.Error()))
		os.Exit(1)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")
	logging.AppLogger.Info("curio CLI connected", zap.String("url", url))

	fmt.Println(color.ColorInfo("Connected to " + url))
	fmt.Println(helpText)

	go readEvents(ctx, conn, stop)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	repl := &repl{}
	for {
		input, err := line.Prompt("curio> ")
		if err != nil {
			// Ctrl+C, Ctrl+D or a closed stdin
			fmt.Println()
			break
		}
		input = strings.TrimSpace(input)
		if input != "" {
			line.AppendHistory(input)
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Até logo!")
			break
		}
		if input == "help" {
			fmt.Println(helpText)
			continue
		}
		cmd, ok, err := repl.parse(input)
		if err != nil {
			fmt.Println(color.ColorWarning(err.Error()))
			continue
		}
		if !ok {
			continue
		}
		if err := wsjson.Write(ctx, conn, cmd); err != nil {
			fmt.Println(color.ColorError("send failed: " + err.Error()))
			break
		}
	}
}

func readEvents(ctx context.Context, conn *websocket.Conn, stop context.CancelFunc) {
	defer stop()
	for {
		var e wstypes.RawEvent
		if err := wsjson.Read(ctx, conn, &e); err != nil {
			if !errors.Is(err, context.Canceled) && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				fmt.Println(color.ColorError("\nconnection closed: " + err.Error()))
			}
			return
		}
		if out := render(e); out != "" {
			fmt.Println("\r" + out)
		}
	}
}

// serverURL derives the websocket endpoint from an explicit argument or the server address.
func serverURL(addr string, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "ws://" + addr + "/ws"
}
