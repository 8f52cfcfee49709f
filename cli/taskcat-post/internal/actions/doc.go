// Package actions talks to the GitHub Actions runner on behalf of the post
// step: it reads action inputs from the environment and writes log lines and
// annotations as workflow commands on stdout.
//
// Logging goes through logrus so the rest of the tree can use the familiar
// WithField/WithError helpers; the Formatter in this package turns each entry
// into the workflow command the runner understands.
package actions
