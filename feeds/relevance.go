package feeds

import (
	"regexp"
	"strings"
)

// Short terms would false-positive as substrings ("ai" inside "said"), so
// they match on word boundaries; longer terms match anywhere in the text.
var (
	defaultBoundaryTerms = []string{
		"ai", "llm", "gpt", "nlp", "rag", "gpu", "tpu",
	}
	defaultPlainTerms = []string{
		"artificial intelligence", "machine learning", "deep learning",
		"chatgpt", "claude", "gemini", "neural", "transformer",
		"agentic", "multimodal", "generative", "diffusion",
		"natural language", "computer vision", "robotics", "autonomous",
		"chatbot", "foundation model", "large language model",
		"openai", "anthropic", "deepmind", "hugging face", "huggingface",
		"midjourney", "stable diffusion", "copilot", "sora", "dall-e",
		"nvidia", "tensor", "fine-tun", "embedding",
		"reinforcement learning", "supervised learning", "unsupervised",
		"prompt engineer", "synthetic data",
		"인공지능", "머신러닝", "딥러닝", "생성형", "언어모델", "챗봇",
		"파인튜닝", "임베딩", "프롬프트", "신경망", "자율주행",
		"컴퓨터 비전", "자연어 처리", "강화학습", "초거대",
	}
)

// Relevance is a cheap keyword matcher deciding whether content belongs to
// the curated topic at all. It backs the per-source pre-filter and serves
// as the deterministic fallback when the model-based relevance filter is
// unavailable.
type Relevance struct {
	boundary *regexp.Regexp
	plain    []string
}

// NewRelevance builds a matcher from two term lists: boundary terms match
// as whole words, plain terms as substrings. Matching is case-insensitive.
func NewRelevance(boundary, plain []string) *Relevance {
	r := &Relevance{}
	if len(boundary) > 0 {
		quoted := make([]string, len(boundary))
		for i, term := range boundary {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(term))
		}
		r.boundary = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	r.plain = make([]string, len(plain))
	for i, term := range plain {
		r.plain[i] = strings.ToLower(term)
	}
	return r
}

// DefaultRelevance returns a matcher over the built-in topic vocabulary,
// English and Korean.
func DefaultRelevance() *Relevance {
	return NewRelevance(defaultBoundaryTerms, defaultPlainTerms)
}

// Match reports whether the title or description mentions any configured
// term.
func (r *Relevance) Match(title, description string) bool {
	text := strings.ToLower(title + " " + description)
	if r.boundary != nil && r.boundary.MatchString(text) {
		return true
	}
	for _, term := range r.plain {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
