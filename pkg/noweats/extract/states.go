package extract

// state is a position of the food-phrase automaton.
type state int

const (
	stateScanEat    state = iota // looking for an eating verb
	stateEatLast                 // previous element was an eating verb
	stateNPFound                 // a noun phrase followed the verb
	stateInFound                 // a connective followed the noun phrase
	stateNPComplete              // phrase finished; stop scanning
	stateInvalid                 // malformed input; no phrase
	numStates
)

var stateNames = [numStates]string{
	stateScanEat:    "SCAN_EAT",
	stateEatLast:    "EAT_LAST",
	stateNPFound:    "NP_FOUND",
	stateInFound:    "IN_FOUND",
	stateNPComplete: "NP_COMPLETE",
	stateInvalid:    "INVALID",
}

func (s state) String() string {
	if s < 0 || s >= numStates {
		return "UNKNOWN"
	}
	return stateNames[s]
}

func (s state) terminal() bool {
	return s == stateNPComplete || s == stateInvalid
}

// input is the class of the element under the read head.
type input int

const (
	inputEat        input = iota // leaf in the eat lexicon
	inputConnective              // leaf in the connective set
	inputLeaf                    // any other leaf
	inputNP                      // NP group
	inputGroup                   // group with another label
	inputEnd                     // end-of-sentence terminator
	inputInvalid                 // nil chunk, empty or unknown element
	numInputs
)

// action is the side effect of a transition on the word lists.
type action int

const (
	actNone action = iota
	actExtractNP
	actAppendConnective
	actExtendNP
	actPopConnective
)

// transition moves to next after running act. When act reports failure the
// automaton moves to onFail instead.
type transition struct {
	next   state
	act    action
	onFail state
}

func to(next state) transition { return transition{next: next, act: actNone, onFail: next} }

// transitions is total: every (state, input) pair has an entry.
var transitions = [numStates][numInputs]transition{
	stateScanEat: {
		inputEat:        to(stateEatLast),
		inputConnective: to(stateScanEat),
		inputLeaf:       to(stateScanEat),
		inputNP:         to(stateScanEat),
		inputGroup:      to(stateScanEat),
		inputEnd:        to(stateScanEat),
		inputInvalid:    to(stateInvalid),
	},
	stateEatLast: {
		inputEat:        to(stateScanEat),
		inputConnective: to(stateScanEat),
		inputLeaf:       to(stateScanEat),
		inputNP:         {next: stateNPFound, act: actExtractNP, onFail: stateScanEat},
		inputGroup:      to(stateScanEat),
		inputEnd:        to(stateScanEat),
		inputInvalid:    to(stateInvalid),
	},
	stateNPFound: {
		inputEat:        to(stateNPComplete),
		inputConnective: {next: stateInFound, act: actAppendConnective, onFail: stateNPComplete},
		inputLeaf:       to(stateNPComplete),
		inputNP:         to(stateNPComplete),
		inputGroup:      to(stateNPComplete),
		inputEnd:        to(stateNPComplete),
		inputInvalid:    to(stateInvalid),
	},
	stateInFound: {
		inputEat:        {next: stateNPComplete, act: actPopConnective, onFail: stateNPComplete},
		inputConnective: {next: stateNPComplete, act: actPopConnective, onFail: stateNPComplete},
		inputLeaf:       {next: stateNPComplete, act: actPopConnective, onFail: stateNPComplete},
		inputNP:         {next: stateNPComplete, act: actExtendNP, onFail: stateNPComplete},
		inputGroup:      {next: stateNPComplete, act: actPopConnective, onFail: stateNPComplete},
		inputEnd:        {next: stateNPComplete, act: actPopConnective, onFail: stateNPComplete},
		inputInvalid:    to(stateInvalid),
	},
	stateNPComplete: {
		inputEat:        to(stateNPComplete),
		inputConnective: to(stateNPComplete),
		inputLeaf:       to(stateNPComplete),
		inputNP:         to(stateNPComplete),
		inputGroup:      to(stateNPComplete),
		inputEnd:        to(stateNPComplete),
		inputInvalid:    to(stateNPComplete),
	},
	stateInvalid: {
		inputEat:        to(stateInvalid),
		inputConnective: to(stateInvalid),
		inputLeaf:       to(stateInvalid),
		inputNP:         to(stateInvalid),
		inputGroup:      to(stateInvalid),
		inputEnd:        to(stateInvalid),
		inputInvalid:    to(stateInvalid),
	},
}
