package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/famez/mschapv2-crack/attack"
	"github.com/famez/mschapv2-crack/session"

	"github.com/golang/glog"
	"github.com/mjwhitta/cli"
)

const (
	exitFound     = 0
	exitError     = 1
	exitExhausted = 2
	exitCancelled = 130
)

type options struct {
	challenge     string
	response      string
	user          string
	wordlist      string
	threads       int
	pcap          string
	radius        string
	eapChallenge  string
	eapResponse   string
	index         int
	progress      int
	onEncodingErr string
	password      string
	hashcat       bool
	verbose       bool
}

var verbose bool

func main() {
	os.Exit(run())
}

func run() int {

	var opts options

	cli.Align = true
	cli.Banner = "mschapv2-crack [OPTIONS]"
	cli.Info("Offline dictionary attack against captured MS-CHAPv2 exchanges")

	cli.Flag(&opts.challenge, "c", "challenge", "", "Auth challenge (hex, 16 bytes)")
	cli.Flag(&opts.response, "r", "response", "", "NT-Response field (hex, 49 bytes: peer challenge, reserved, response, flags)")
	cli.Flag(&opts.user, "u", "user", "", "User name, a DOMAIN\\ prefix is removed")
	cli.Flag(&opts.wordlist, "w", "wordlist", session.DefaultPasswordsFile, "Wordlist, one password per line (- for stdin)")
	cli.Flag(&opts.threads, "t", "threads", runtime.NumCPU(), "Worker goroutines")
	cli.Flag(&opts.pcap, "pcap", "", "Read exchanges from a pcap/pcapng capture (RADIUS, PPP CHAP)")
	cli.Flag(&opts.radius, "radius", "", "RADIUS Access-Request with MS-CHAPv2 attributes (hex)")
	cli.Flag(&opts.eapChallenge, "eap-challenge", "", "EAP-MSCHAPv2 Challenge request (hex)")
	cli.Flag(&opts.eapResponse, "eap-response", "", "EAP-MSCHAPv2 Response (hex)")
	cli.Flag(&opts.index, "i", "index", 0, "Exchange of the capture to attack, 0 attacks all of them")
	cli.Flag(&opts.progress, "progress", session.DefaultProgressInterval, "Report progress every N candidates, 0 disables it")
	cli.Flag(&opts.onEncodingErr, "on-encoding-error", "skip", "Candidates that are not valid UTF-8: skip, abort or substitute")
	cli.Flag(&opts.password, "p", "password", "", "Check a single password instead of running the wordlist")
	cli.Flag(&opts.hashcat, "hashcat", false, "Print the exchanges in hashcat 5500 / john netntlm format and exit")
	//-v belongs to glog, it shares the global flag set with cli
	cli.Flag(&opts.verbose, "verbose", false, "Verbose output and glog level 2 unless -v is given")

	cli.Parse()

	verbose = opts.verbose

	configureLogging(opts.verbose)
	defer glog.Flush()

	printBanner()

	policy, err := session.ParseEncodingPolicy(opts.onEncodingErr)
	if err != nil {
		error_("%v", err)
		return exitError
	}

	if opts.threads < 1 || opts.progress < 0 {
		error_("Invalid --threads or --progress value")
		return exitError
	}

	session.SetConfig(opts.wordlist, opts.threads, uint64(opts.progress), policy)

	exchanges, err := loadExchanges(&opts)
	if err != nil {
		if errors.Is(err, errInterrupted) {
			return exitCancelled
		}
		error_("%v", err)
		if errors.Is(err, errNoInput) {
			cli.Usage(exitError)
		}
		return exitError
	}

	if len(exchanges) == 0 {
		error_("No MS-CHAPv2 exchange found")
		return exitError
	}

	if opts.index > 0 {
		if opts.index > len(exchanges) {
			error_("Index %d out of range, %d exchanges found", opts.index, len(exchanges))
			return exitError
		}
		exchanges = exchanges[opts.index-1 : opts.index]
	}

	if opts.hashcat {
		for _, exchange := range exchanges {
			fmt.Println(exchange.HashcatLine())
		}
		return exitFound
	}

	if opts.password != "" {
		return verify(exchanges, opts.password)
	}

	if opts.wordlist == "-" && len(exchanges) > 1 {
		error_("The wordlist can be read once from stdin, select an exchange with -i")
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return crack(ctx, exchanges)
}

func configureLogging(verbose bool) {

	//glog writes to files by default
	flag.Set("logtostderr", "true")

	if verbose && flag.Lookup("v").Value.String() == "0" {
		flag.Set("v", strconv.Itoa(2))
	}
}

//crack attacks every exchange in turn. It stops at the first cancellation.
func crack(ctx context.Context, exchanges []*session.Exchange) int {

	found := 0

	for i, exchange := range exchanges {

		if len(exchanges) > 1 {
			info_("Exchange %d/%d", i+1, len(exchanges))
		}

		printExchange(exchange)

		config := session.GetConfig()
		info_("Wordlist %s, %d workers", config.GetPasswordsFile(), config.GetWorkers())

		result, err := attack.GuessPasswordFromMsCHAPv2(ctx, exchange, printProgress)

		endProgress()

		if result != nil {
			printResult(exchange, result)
		}

		switch {
		case errors.Is(err, attack.ErrCancelled):
			warn_("Interrupted")
			return exitCancelled
		case err != nil:
			error_("%v", err)
			return exitError
		case result.State == attack.Found:
			found++
		}
	}

	if found == 0 {
		return exitExhausted
	}

	return exitFound
}

func verify(exchanges []*session.Exchange, password string) int {

	code := exitExhausted

	for _, exchange := range exchanges {

		match, err := exchange.Matches(password)

		switch {
		case err != nil:
			error_("%v", err)
			return exitError
		case match:
			success_("Password matches %s", exchange.Source)
			code = exitFound
		default:
			warn_("Password does not match %s", exchange.Source)
		}
	}

	return code
}
