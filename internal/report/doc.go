// Package report renders crawl reports for output.
//
// Three formats are available: plain text for the terminal, JSON for tool
// integration, and Markdown for documentation. Writers implement a common
// interface so the command layer can compose them, e.g. terminal plus
// file output in one run.
package report
