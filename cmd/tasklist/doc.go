// Command tasklist manages the task list from the terminal. It talks to
// tasklistd over HTTP, or reads and writes the data file directly with
// --direct.
package main
