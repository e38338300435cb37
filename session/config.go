package session

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	DefaultPasswordsFile    = "wordlist.txt"
	DefaultProgressInterval = 1000
)

//EncodingPolicy decides what happens to a candidate password that cannot be
//encoded as UTF-16LE before hashing.
type EncodingPolicy uint8

const (
	SkipCandidate     EncodingPolicy = iota //Log and go on with the next candidate
	AbortSearch                             //Stop the whole search with an error
	SubstituteInvalid                       //Replace invalid bytes with U+FFFD and hash the result
)

var policyNames = map[EncodingPolicy]string{
	SkipCandidate:     "skip",
	AbortSearch:       "abort",
	SubstituteInvalid: "substitute",
}

func (policy EncodingPolicy) String() string {
	if name, ok := policyNames[policy]; ok {
		return name
	}
	return fmt.Sprintf("EncodingPolicy(%d)", uint8(policy))
}

//ParseEncodingPolicy accepts skip, abort or substitute
func ParseEncodingPolicy(name string) (EncodingPolicy, error) {
	for policy, policyName := range policyNames {
		if strings.EqualFold(name, policyName) {
			return policy, nil
		}
	}
	return SkipCandidate, fmt.Errorf("unknown encoding policy %q (expected skip, abort or substitute)", name)
}

type config struct {
	passwordsFile    string //File to perform a dictionary attack
	workers          int
	progressInterval uint64
	encodingPolicy   EncodingPolicy
}

var privConfig = config{
	passwordsFile:    DefaultPasswordsFile,
	workers:          runtime.NumCPU(),
	progressInterval: DefaultProgressInterval,
	encodingPolicy:   SkipCandidate,
}

func SetConfig(passwords string, workers int, progressInterval uint64, policy EncodingPolicy) {

	if passwords == "" {
		passwords = DefaultPasswordsFile
	}

	if workers < 1 {
		workers = 1
	}

	privConfig = config{
		passwordsFile:    passwords,
		workers:          workers,
		progressInterval: progressInterval,
		encodingPolicy:   policy,
	}
}

func GetConfig() config {
	return privConfig
}

func (config config) GetPasswordsFile() string {
	return config.passwordsFile
}

func (config config) GetWorkers() int {
	return config.workers
}

//GetProgressInterval returns how many candidates are tried between progress reports. 0 disables them.
func (config config) GetProgressInterval() uint64 {
	return config.progressInterval
}

func (config config) GetEncodingPolicy() EncodingPolicy {
	return config.encodingPolicy
}
