package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage/badger"
)

// A compiled-in day of news so show and cleanup can be exercised without a
// running model service. Sources and categories match the default catalog.
type seedRow struct {
	source   string
	url      string
	title    string
	display  string
	summary  string
	entities []string
	cluster  string
	category string
	score    float64
	hoursAgo int
	lang     string
}

var rows = []seedRow{
	{
		source:   "deepmind_blog",
		url:      "https://deepmind.google/blog/sparse-expert-scaling",
		title:    "Revisiting Scaling Laws for Sparse Expert Models",
		display:  "Sparse expert scaling laws revisited",
		summary:  "New measurements suggest expert routing changes the compute-optimal frontier.",
		entities: []string{"Google DeepMind"},
		cluster:  "sparse expert scaling study",
		category: "research",
		score:    92,
		hoursAgo: 5,
		lang:     "en",
	},
	{
		source:   "the_verge_ai",
		url:      "https://www.theverge.com/ai/compact-reasoning-laptop",
		title:    "This Compact Reasoning Model Runs on a Laptop",
		display:  "Compact reasoning model runs locally",
		summary:  "A distilled reasoning model matches larger systems on math benchmarks while fitting in 16 GB.",
		entities: []string{"Hugging Face"},
		cluster:  "compact reasoning release",
		category: "models_products",
		score:    88,
		hoursAgo: 3,
		lang:     "en",
	},
	{
		source:   "techcrunch_ai",
		url:      "https://techcrunch.com/chip-supply-data-centers",
		title:    "Chip Supply Deals Reshape the Data Center Buildout",
		display:  "Chip supply deals reshape data centers",
		summary:  "Multi-year accelerator commitments are locking in capacity through 2028.",
		entities: []string{"NVIDIA", "TSMC"},
		cluster:  "accelerator supply deals",
		category: "industry_business",
		score:    84,
		hoursAgo: 7,
		lang:     "en",
	},
	{
		source:   "mit_tech_review",
		url:      "https://www.technologyreview.com/interpretability-production",
		title:    "Interpretability Tools Reach Production Labs",
		display:  "Interpretability tooling goes to production",
		summary:  "Feature attribution methods are moving from papers into deployment reviews.",
		entities: []string{"Anthropic"},
		cluster:  "interpretability adoption",
		category: "research",
		score:    81,
		hoursAgo: 9,
		lang:     "en",
	},
	{
		source:   "nvidia_blog",
		url:      "https://blogs.nvidia.com/inference-speculative-decoding",
		title:    "Inference Microservices Add Speculative Decoding",
		display:  "Speculative decoding lands in inference microservices",
		summary:  "Draft-model acceleration is now a toggle in the serving stack.",
		entities: []string{"NVIDIA"},
		cluster:  "inference serving update",
		category: "models_products",
		score:    76,
		hoursAgo: 11,
		lang:     "en",
	},
	{
		source:   "techcrunch_ai",
		url:      "https://techcrunch.com/coding-agents-ga",
		title:    "Coding Agents Move Into General Availability",
		display:  "Coding agents hit general availability",
		summary:  "Two vendors dropped the waitlists on their autonomous coding products.",
		entities: []string{"GitHub"},
		cluster:  "coding agent launches",
		category: "models_products",
		score:    71,
		hoursAgo: 8,
		lang:     "en",
	},
	{
		source:   "venturebeat",
		url:      "https://venturebeat.com/enterprise-agent-spend",
		title:    "Enterprise Adoption Survey Shows Agent Spend Doubling",
		display:  "Survey: enterprise agent spend doubling",
		summary:  "CIOs report agent budgets growing faster than overall IT spend.",
		entities: []string{"Gartner"},
		cluster:  "enterprise adoption survey",
		category: "industry_business",
		score:    69,
		hoursAgo: 14,
		lang:     "en",
	},
	{
		source:   "huggingface_blog",
		url:      "https://huggingface.co/blog/benchmark-contamination-audit",
		title:    "Community Benchmarks Get a Contamination Audit",
		display:  "Benchmark contamination audit published",
		summary:  "A sweep over popular eval sets flags overlap with common pretraining corpora.",
		entities: []string{"Hugging Face"},
		cluster:  "benchmark contamination audit",
		category: "research",
		score:    67,
		hoursAgo: 16,
		lang:     "en",
	},
	{
		source:   "wired_ai",
		url:      "https://www.wired.com/story/compute-policy-committee",
		title:    "Compute Policy Vote Clears Committee",
		display:  "Compute policy clears committee",
		summary:  "The reporting-threshold bill heads to a floor vote next month.",
		entities: []string{"US Congress"},
		cluster:  "compute policy bill",
		category: "industry_business",
		score:    61,
		hoursAgo: 20,
		lang:     "en",
	},
	{
		source:   "venturebeat",
		url:      "https://venturebeat.com/open-weight-on-device",
		title:    "Open-Weight Release Targets On-Device Assistants",
		display:  "Open weights aimed at on-device assistants",
		summary:  "A 3B checkpoint ships with quantized builds for phones.",
		entities: []string{"Qualcomm"},
		cluster:  "on-device assistant release",
		category: "models_products",
		score:    54,
		hoursAgo: 18,
		lang:     "en",
	},
	{
		source:   "aitimes",
		url:      "https://www.aitimes.com/news/ai-basic-law-decree",
		title:    "정부, 인공지능 기본법 시행령 입법예고",
		display:  "정부, 인공지능 기본법 시행령 입법예고",
		summary:  "고위험 인공지능 분류 기준과 신고 절차를 담은 시행령 초안이 공개됐다.",
		entities: []string{"과학기술정보통신부"},
		cluster:  "ai basic law decree",
		hoursAgo: 6,
		lang:     "ko",
	},
	{
		source:   "aitimes",
		url:      "https://www.aitimes.com/news/light-translation-model",
		title:    "국내 연구진, 경량 번역 모델 공개",
		display:  "국내 연구진, 경량 번역 모델 공개",
		summary:  "국내 연구진이 모바일에서 동작하는 경량 번역 모델을 공개했다.",
		entities: []string{"연구진"},
		cluster:  "korean translation model",
		hoursAgo: 10,
		lang:     "ko",
	},
	{
		source:   "geeknews",
		url:      "https://news.hada.io/topic/agent-funding-wave",
		title:    "스타트업 투자 동향: 에이전트 열풍",
		display:  "스타트업 투자 동향: 에이전트 열풍",
		summary:  "에이전트 스타트업으로 투자금이 몰리고 있다는 분석.",
		entities: []string{"에이전트"},
		cluster:  "agent funding wave",
		hoursAgo: 12,
		lang:     "ko",
	},
	{
		source:   "openai_blog",
		url:      "https://openai.com/blog/safety-evaluations-update",
		title:    "Safety Evaluations Update",
		display:  "Safety evaluations update",
		summary:  "The evaluation suite now covers long-horizon agentic tasks.",
		entities: []string{"OpenAI"},
		cluster:  "safety evaluation update",
		hoursAgo: 4,
		lang:     "en",
	},
	{
		source:   "openai_blog",
		url:      "https://openai.com/blog/structured-outputs-api",
		title:    "Structured Outputs in the API",
		display:  "Structured outputs in the API",
		summary:  "Schema-constrained generation is out of beta.",
		entities: []string{"OpenAI"},
		cluster:  "structured outputs ga",
		hoursAgo: 15,
		lang:     "en",
	},
}

var categoryOrder = []string{"research", "models_products", "industry_business"}

var highlightSources = map[string]bool{
	"wired_ai":        true,
	"the_verge_ai":    true,
	"techcrunch_ai":   true,
	"mit_tech_review": true,
	"venturebeat":     true,
}

var (
	dbPath = flag.String("db", "./digest_db", "path to the BadgerDB database directory")
	day    = flag.String("date", "", "digest date as YYYY-MM-DD (empty uses today)")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func buildItems(stamp time.Time) []*core.Item {
	items := make([]*core.Item, 0, len(rows))
	for _, row := range rows {
		key, err := core.NormalizeKey(row.url)
		if err != nil {
			panic(err)
		}
		items = append(items, &core.Item{
			Key:       key,
			URL:       row.url,
			Title:     row.title,
			Source:    row.source,
			Language:  row.lang,
			Published: stamp.Add(-time.Duration(row.hoursAgo) * time.Hour),
			FetchedAt: stamp,
			Annotation: &core.Annotation{
				DisplayTitle: row.display,
				Summary:      row.summary,
				Entities:     row.entities,
				Cluster:      row.cluster,
			},
			Category: row.category,
			Score:    row.score,
			Relevant: true,
			Recent:   true,
		})
	}
	return items
}

func buildDigest(date string, items []*core.Item) *core.Digest {
	digest := &core.Digest{
		Date:       date,
		Categories: make(map[string][]core.Item),
		Sources:    make(map[string][]core.Item),
	}

	for _, it := range items {
		if it.Category != "" {
			digest.Categories[it.Category] = append(digest.Categories[it.Category], *it)
			digest.TotalCount++
			continue
		}
		if _, ok := digest.Sources[it.Source]; !ok {
			digest.SourceOrder = append(digest.SourceOrder, it.Source)
		}
		digest.Sources[it.Source] = append(digest.Sources[it.Source], *it)
	}

	for _, name := range categoryOrder {
		ranked := digest.Categories[name]
		if len(ranked) == 0 {
			continue
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Score > ranked[j].Score
		})
		digest.CategoryOrder = append(digest.CategoryOrder, name)

		for _, it := range ranked {
			if highlightSources[it.Source] && len(digest.Highlights) < 3 {
				digest.Highlights = append(digest.Highlights, it)
			}
		}
	}
	sort.SliceStable(digest.Highlights, func(i, j int) bool {
		return digest.Highlights[i].Score > digest.Highlights[j].Score
	})

	return digest
}

func main() {
	date := *day
	if date == "" {
		date = core.DateKey(time.Now())
	}
	stamp := time.Now().UTC().Truncate(time.Second)

	backend, err := badger.OpenBackend(*dbPath, false)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	ctx := context.Background()
	items := buildItems(stamp)

	if err := badger.NewItemRepository(backend).PutItems(ctx, items...); err != nil {
		panic(err)
	}
	saved, err := badger.NewDigestRepository(backend).SaveDigest(ctx, buildDigest(date, items))
	if err != nil {
		panic(err)
	}

	slog.Info("seeded digest",
		"db", *dbPath, "date", saved.Date,
		"items", len(items), "highlights", len(saved.Highlights))
}
