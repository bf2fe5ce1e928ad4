// Package command exposes document rendering as go-command messages and a
// batch CLI/Cron command.
package command
