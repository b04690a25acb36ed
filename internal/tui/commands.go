package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Codewiz19/legallens/internal/backend"
	"github.com/Codewiz19/legallens/internal/config"
	"github.com/Codewiz19/legallens/internal/document"
	"github.com/Codewiz19/legallens/internal/report"
	"github.com/Codewiz19/legallens/internal/session"
)

func loadDocumentJob(path string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		doc, err := document.Load(path)
		return docResultMsg{doc: doc, err: err}, err
	}
}

func uploadJob(client backend.Client, doc *document.Document) jobRunner {
	name := doc.DisplayName
	data := doc.Data
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := client.Upload(ctx, name, data)
		return uploadResultMsg{result: result, err: err}, err
	}
}

// summarizeJob normalizes inside the job so the raw payload never reaches
// the model. Whatever shape the backend returns, the message carries a
// canonical summary.
func summarizeJob(client backend.Client, cfg config.Config, docID, displayName string) jobRunner {
	split := cfg.SplitConfig()
	return func(ctx context.Context) (tea.Msg, error) {
		raw, err := client.Summarize(ctx, docID, displayName)
		if err != nil {
			return summaryResultMsg{docID: docID, err: err}, err
		}
		summary := report.NormalizeSummary(raw, split)
		if summary.DocumentID == "" {
			summary.DocumentID = docID
		}
		return summaryResultMsg{docID: docID, summary: summary}, nil
	}
}

func risksJob(client backend.Client, docID string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		raw, err := client.ExtractRisks(ctx, docID)
		if err != nil {
			return risksResultMsg{docID: docID, err: err}, err
		}
		return risksResultMsg{docID: docID, assessment: report.NormalizeRisks(raw)}, nil
	}
}

func chatJob(client backend.Client, docID, sessionID string, messages []backend.ChatMessage, index int) jobRunner {
	history := append([]backend.ChatMessage(nil), messages...)
	return func(ctx context.Context) (tea.Msg, error) {
		reply, err := client.Chat(ctx, docID, sessionID, history)
		return chatResultMsg{docID: docID, index: index, answer: reply.Response, err: err}, err
	}
}

func persistJob(store *session.Store, snapshot session.Snapshot) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		if store == nil {
			return persistResultMsg{}, nil
		}
		err := store.Save(snapshot)
		return persistResultMsg{err: err}, err
	}
}

func exportJob(snapshot session.Snapshot, path string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := session.Export(snapshot, path)
		return exportResultMsg{path: path, err: err}, err
	}
}
