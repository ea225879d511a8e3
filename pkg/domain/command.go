package domain

// CommandKind labels a command for logs and metrics.
type CommandKind string

const (
	CommandSubmitInput    CommandKind = "submit_input"
	CommandSetPreference  CommandKind = "set_preference"
	CommandKeyPress       CommandKind = "key_press"
	CommandRuleFileLoaded CommandKind = "rule_file_loaded"
)

// Command is a UI event handed to the controller. The set of implementations is
// closed; the controller dispatches on the concrete type.
type Command interface {
	Kind() CommandKind
	isCommand()
}

// SubmitInput carries freshly submitted math text.
type SubmitInput struct {
	Text string
}

// SetPreference changes one preference.
type SetPreference struct {
	Key   PreferenceKey
	Value string
}

// KeyPress carries a key event aimed at the rendered math.
type KeyPress struct {
	Event KeyEvent
}

// RuleFileLoaded delivers the contents of a rule file read out of band.
// Only the base name of Name is honored.
type RuleFileLoaded struct {
	Name     string
	Contents string
}

func (SubmitInput) Kind() CommandKind    { return CommandSubmitInput }
func (SetPreference) Kind() CommandKind  { return CommandSetPreference }
func (KeyPress) Kind() CommandKind       { return CommandKeyPress }
func (RuleFileLoaded) Kind() CommandKind { return CommandRuleFileLoaded }

func (SubmitInput) isCommand()    {}
func (SetPreference) isCommand()  {}
func (KeyPress) isCommand()       {}
func (RuleFileLoaded) isCommand() {}

// Result summarizes what a command did, for hosts.
type Result struct {
	Kind CommandKind `json:"kind"`
	// Changed reports whether session state was mutated.
	Changed bool `json:"changed"`
	// Outcome is set for key presses.
	Outcome NavOutcome `json:"outcome"`
	// Notice is a user-facing diagnostic that is not part of session state
	// (e.g. a rejected navigation move).
	Notice string `json:"notice,omitempty"`
	// Err holds a recovered error. The session keeps its prior state.
	Err error `json:"-"`
}
