// Package feedback defines the boundary between the progress-tracking core
// and the external AI service that scores speaking and writing submissions.
// The core never imports the concrete client; it sees only the Scorer
// interface and the sentinel errors declared here.
package feedback
