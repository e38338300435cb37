package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/famez/mschapv2-crack/attack"
	"github.com/famez/mschapv2-crack/eap"
	"github.com/famez/mschapv2-crack/session"

	"golang.org/x/term"
)

const Version = "0.2.0"

// Colors for output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

var progressShown atomic.Bool

func printBanner() {
	fmt.Printf("%smschapv2-crack v%s%s\n\n", colorBold, Version, colorReset)
}

func printExchange(exchange *session.Exchange) {
	challenge := exchange.Challenge()

	info_("Source:         %s", exchange.Source)
	info_("User name:      %q", exchange.Username)
	info_("Auth challenge: %X", exchange.AuthChallenge)
	info_("Peer challenge: %X", exchange.PeerChallenge)
	info_("Challenge:      %X", challenge)
	info_("NT response:    %X", exchange.NTResponse)
}

//printProgress is called from the worker goroutines
func printProgress(tried uint64) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("\r"+colorCyan+"[*]"+colorReset+" %d candidates tried", tried)
		progressShown.Store(true)
		return
	}
	info_("%d candidates tried", tried)
}

func endProgress() {
	if progressShown.Swap(false) {
		fmt.Println()
	}
}

func printResult(exchange *session.Exchange, result *attack.Result) {

	switch result.State {
	case attack.Found:
		success_("Password found for %q: %s%q%s (line %d)", exchange.Username, colorBold, result.Password, colorReset, result.Position)
		printTrace(result)
	case attack.Exhausted:
		warn_("Password not in the wordlist")
	default:
		warn_("Search %s", result.State)
	}

	if result.Skipped > 0 {
		warn_("%d candidates skipped, not valid UTF-8", result.Skipped)
	}

	info_("%d candidates in %v (%.0f/s)", result.Tried, result.Elapsed.Truncate(time.Millisecond), result.Rate())
}

//printTrace shows the intermediate values of the response computation. rfc2759 8.5
func printTrace(result *attack.Result) {
	trace := eap.ChallengeResponseTrace(result.Challenge, result.NTHash)

	info_("NT hash:      %X", trace.Hash)
	info_("ZPWD:         %X", trace.ZHash)

	for i := range trace.Keys {
		info_("DES key %d:    %X -> %X", i+1, trace.Keys[i], trace.Blocks[i])
	}

	info_("Response:     %X", trace.Response)
}

func info_(format string, args ...interface{}) {
	fmt.Printf(colorCyan+"[*]"+colorReset+" "+format+"\n", args...)
}

func success_(format string, args ...interface{}) {
	fmt.Printf(colorGreen+"[+]"+colorReset+" "+format+"\n", args...)
}

func error_(format string, args ...interface{}) {
	fmt.Printf(colorRed+"[!]"+colorReset+" "+format+"\n", args...)
}

func warn_(format string, args ...interface{}) {
	fmt.Printf(colorYellow+"[-]"+colorReset+" "+format+"\n", args...)
}

func debug_(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(colorBlue+"[D]"+colorReset+" "+format+"\n", args...)
	}
}
