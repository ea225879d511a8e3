package tui

const helpMarkdown = `# MathView keys

Type math in the input line and press **Enter**. Wrap TeX in ` + "`$...$`" + `,
ASCIIMath in backquotes, or paste MathML.

| Key | Math mode |
|---|---|
| ←/→ | previous/next part (Shift, Ctrl modify) |
| ↑/↓ | zoom out/in |
| Home/End | first/last part |
| Enter, Space | repeat current part |
| Backspace | go back |
| 0-9 | jump to placemark |
| Alt+0-9 | set placemark |
| Esc | back to input |

| Letter | Cycles |
|---|---|
| m | navigation mode |
| v | navigation verbosity |
| s | speech style |
| w | speech verbosity |
| t | text to speech |
| b | braille code |
| d | braille display |
| h | braille highlight |
`

// HelpMarkdown returns the key reference shown by interactive hosts.
func HelpMarkdown() string {
	return helpMarkdown
}

func renderHelp() string {
	out, err := NewRenderer()(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
