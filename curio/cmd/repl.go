package main

import (
	"curio/curio/services/feedback"
	"curio/curio/services/panel"
	"curio/curio/types"
	"curio/curio/utils/color"
	wstypes "curio/curio/utils/types"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpText = `Commands:
  /signup <email> <password> [full name]
  /signin <email> <password>
  /signout
  /history
  /suggestions
  /screen <auth|chat>
  /provider <name>     use this provider for the next questions ("" resets)
  help | exit
Anything else is sent as a question.`

var errUsage = errors.New("usage error, type help")

// markdown renders assistant answers; nil prints them as plain text.
var markdown *glamour.TermRenderer

func initMarkdown() {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return
	}
	markdown = r
}

func renderAnswer(text string) string {
	if markdown == nil {
		return color.ColorAssistant(text)
	}
	out, err := markdown.Render(text)
	if err != nil {
		return color.ColorAssistant(text)
	}
	return strings.TrimRight(out, "\n")
}

type repl struct {
	seq      int
	provider string
}

// parse turns one input line into a command; ok is false when nothing should be sent.
func (r *repl) parse(line string) (cmd wstypes.Command, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return cmd, false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return r.command(wstypes.CmdAsk, types.AskRequest{Question: line, Provider: r.provider})
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/signup":
		if len(fields) < 3 {
			return cmd, false, errUsage
		}
		req := types.SignUpRequest{Email: fields[1], Password: fields[2]}
		if len(fields) > 3 {
			name := strings.Join(fields[3:], " ")
			req.FullName = &name
		}
		return r.command(wstypes.CmdSignUp, req)
	case "/signin":
		if len(fields) != 3 {
			return cmd, false, errUsage
		}
		return r.command(wstypes.CmdSignIn, types.SignInRequest{Email: fields[1], Password: fields[2]})
	case "/signout":
		return r.command(wstypes.CmdSignOut, nil)
	case "/history":
		return r.command(wstypes.CmdLoadHistory, nil)
	case "/suggestions":
		return r.command(wstypes.CmdSuggestions, nil)
	case "/screen":
		if len(fields) != 2 {
			return cmd, false, errUsage
		}
		return r.command(wstypes.CmdShowScreen, wstypes.ShowScreenPayload{Screen: fields[1]})
	case "/provider":
		r.provider = ""
		if len(fields) > 1 {
			r.provider = fields[1]
		}
		return cmd, false, nil
	default:
		return cmd, false, fmt.Errorf("unknown command %s, type help", fields[0])
	}
}

func (r *repl) command(typ string, payload any) (wstypes.Command, bool, error) {
	r.seq++
	cmd := wstypes.Command{ID: strconv.Itoa(r.seq), Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return cmd, false, err
		}
		cmd.Payload = raw
	}
	return cmd, true, nil
}

// render formats one server event for the terminal; "" means print nothing.
func render(e wstypes.RawEvent) string {
	switch e.Type {
	case wstypes.EvtScreen:
		var p wstypes.ScreenEvent
		if json.Unmarshal(e.Payload, &p) != nil || !p.Visible {
			return ""
		}
		return color.ColorInfo("[" + p.Screen + "]")

	case wstypes.EvtMessage:
		var p wstypes.MessageEvent
		if json.Unmarshal(e.Payload, &p) != nil {
			return ""
		}
		switch {
		case p.Pending:
			return color.ColorPending(p.Text)
		case p.Error:
			return color.ColorError(p.Text)
		case p.Sender == panel.SenderUser:
			return "> " + p.Text
		default:
			return renderAnswer(p.Text)
		}

	case wstypes.EvtNotice:
		var p wstypes.NoticeEvent
		if json.Unmarshal(e.Payload, &p) != nil {
			return ""
		}
		if p.Kind == feedback.KindError {
			return color.ColorError("! " + p.Text)
		}
		return color.ColorInfo("* " + p.Text)

	case wstypes.EvtSuggestions:
		var p wstypes.SuggestionsEvent
		if json.Unmarshal(e.Payload, &p) != nil || len(p.Items) == 0 {
			return ""
		}
		lines := make([]string, 0, len(p.Items)+1)
		lines = append(lines, "Sugestões:")
		for _, item := range p.Items {
			lines = append(lines, "  - "+item)
		}
		return color.ColorSuggestion(strings.Join(lines, "\n"))

	case wstypes.EvtResult:
		var p wstypes.ResultEvent
		if json.Unmarshal(e.Payload, &p) != nil {
			return ""
		}
		// answers and errors already arrive as messages or notices
		if !p.Success && p.Suggestion != "" {
			return color.ColorWarning(p.Suggestion)
		}
		return ""
	}
	return ""
}
