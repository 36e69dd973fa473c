package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cash-ai/internal/models"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// contentGenerator is the slice of the genai client the drafter uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

const geminiSystemPrompt = `あなたは日本の財務諸表を標準様式に組み替える担当者です。
与えられた勘定科目を標準様式の各行に割り当て、1行につき次の形式で出力してください。
行番号｜勘定科目｜前々期｜前期｜今期｜区分｜計算方法
区分は 変動・固定・空欄 のいずれか。金額は整数。説明文やコードブロックは出力しないこと。
対象行は 1～78 と 112～154 のすべてです。複数科目を合算した行は計算方法に「合算: 科目A+科目B」と記載してください。`

// GeminiDrafter asks Gemini for the draft and parses its reply.
type GeminiDrafter struct {
	generator contentGenerator
	model     string
	logger    *logrus.Logger
}

// NewGeminiDrafter connects to the Gemini API with the given key.
func NewGeminiDrafter(ctx context.Context, apiKey, model string, logger *logrus.Logger) (*GeminiDrafter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiDrafter{generator: client.Models, model: model, logger: logger}, nil
}

func (d *GeminiDrafter) Draft(ctx context.Context, l *Ledger) (*Mapping, error) {
	prompt, err := buildDraftPrompt(l)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: geminiSystemPrompt}},
		},
	}
	result, err := d.generator.GenerateContent(ctx, d.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	d.logger.WithFields(logrus.Fields{
		"model": d.model,
		"chars": len(text),
	}).Info("Classifier draft received")

	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("classifier returned an empty draft")
	}
	return ParseDraftText(text)
}

// buildDraftPrompt renders the layout document and the ledger as JSON.
func buildDraftPrompt(l *Ledger) (string, error) {
	payload := make(map[models.Section][]models.AccountRecord, len(models.Sections))
	for _, sec := range models.Sections {
		payload[sec] = l.Section(sec)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode ledger: %w", err)
	}

	var b strings.Builder
	b.WriteString("# 標準様式\n")
	b.WriteString(LayoutDocument())
	b.WriteString("\n# 勘定科目\n")
	b.Write(data)
	return b.String(), nil
}
