package pkg

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// newObservedReporter returns a reporter whose log output can be inspected
func newObservedReporter() (*Reporter, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewReporter(zap.New(core), NewDiagnostics()), logs
}

func linkCell(text, link string) Cell {
	return Cell{Text: text, Link: link}
}

func paragraphCell(paragraphs ...string) Cell {
	cell := Cell{Paragraphs: paragraphs}
	for i, p := range paragraphs {
		if i > 0 {
			cell.Text += " "
		}
		cell.Text += p
	}
	return cell
}
