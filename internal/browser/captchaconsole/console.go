// Package captchaconsole implements an operator-facing prompt for resolving
// CAPTCHA challenges encountered mid-scrape: a terminal bell plus a line
// read from stdin, with the prompt text also broadcast to any websocket
// viewers connected to the console's HTTP handler. Replies are read from
// stdin only; messages sent by viewers are discarded.
package captchaconsole

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bevalc-intelligence/cola-engine/internal/browser"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
)

const bell = "\a"

// Console prompts an operator for a CAPTCHA decision over stdin (with a
// terminal bell to get attention) and mirrors the same prompt text to any
// connected websocket viewers. Viewers only receive the prompt; the reply
// is always read from stdin.
type Console struct {
	logger   *log.Logger
	in       *bufio.Reader
	upgrader websocket.Upgrader

	mu      sync.Mutex
	viewers map[*websocket.Conn]bool
}

// New builds a Console that reads operator replies from in (use os.Stdin in
// production; a strings.Reader in tests).
func New(logger *log.Logger, in *bufio.Reader) *Console {
	return &Console{
		logger:  logger,
		in:      in,
		viewers: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns an http.Handler an operator can point a browser tab at to
// receive CAPTCHA prompts from a remote machine. Messages the tab sends are
// read and discarded; they do not answer the prompt.
func (c *Console) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := c.upgrader.Upgrade(w, r, nil)
		if err != nil {
			c.logger.Warn("captcha console upgrade failed", "error", err.Error())
			return
		}
		c.mu.Lock()
		c.viewers[conn] = true
		c.mu.Unlock()
		defer func() {
			c.mu.Lock()
			delete(c.viewers, conn)
			c.mu.Unlock()
			conn.Close()
		}()
		// Keep the connection open; incoming messages are discarded, and
		// Prompt reads its reply from stdin only.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}

// Prompt implements browser.Prompter. It rings the terminal bell, prints the
// message, broadcasts it to any connected viewers, and blocks on stdin for a
// one-word reply: "continue", "skip", or "quit".
func (c *Console) Prompt(ctx context.Context, message string) (browser.PromptResult, error) {
	fmt.Print(bell)
	fmt.Printf("\nCAPTCHA: %s\n[continue/skip/quit] > ", message)
	c.broadcast(message)

	type readResult struct {
		line string
		err  error
	}
	resultCh := make(chan readResult, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		resultCh <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return browser.PromptQuit, ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return browser.PromptQuit, res.err
		}
		switch strings.ToLower(strings.TrimSpace(res.line)) {
		case "skip":
			return browser.PromptSkip, nil
		case "quit", "q":
			return browser.PromptQuit, nil
		default:
			return browser.PromptContinue, nil
		}
	}
}

func (c *Console) broadcast(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for conn := range c.viewers {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
			c.logger.Warn("captcha console broadcast failed", "error", err.Error())
		}
	}
}
