// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package feeds

// DefaultSources is the compiled-in catalog: five editorial outlets
// eligible for highlights, three vendor blogs, four Korean section sources
// and five English section sources.
func DefaultSources() []Descriptor {
	return []Descriptor{
		{
			Key:        "wired_ai",
			Name:       "Wired AI",
			Endpoint:   "https://www.wired.com/feed/tag/ai/latest/rss",
			Role:       RoleCategory,
			MaxItems:   40,
			Language:   "en",
			ImageField: HintMediaThumbnail,
			Highlight:  true,
		},
		{
			Key:        "the_verge_ai",
			Name:       "The Verge AI",
			Endpoint:   "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml",
			Role:       RoleCategory,
			MaxItems:   40,
			Language:   "en",
			ImageField: HintContentImage,
			Highlight:  true,
		},
		{
			Key:       "techcrunch_ai",
			Name:      "TechCrunch AI",
			Endpoint:  "https://techcrunch.com/category/artificial-intelligence/feed/",
			Role:      RoleCategory,
			MaxItems:  40,
			Language:  "en",
			Highlight: true,
		},
		{
			Key:       "mit_tech_review",
			Name:      "MIT Tech Review",
			Endpoint:  "https://www.technologyreview.com/topic/artificial-intelligence/feed",
			Role:      RoleCategory,
			MaxItems:  40,
			Language:  "en",
			Highlight: true,
		},
		{
			Key:       "venturebeat",
			Name:      "VentureBeat",
			Endpoint:  "https://venturebeat.com/feed/",
			Role:      RoleCategory,
			MaxItems:  40,
			Language:  "en",
			Highlight: true,
		},
		{
			Key:        "deepmind_blog",
			Name:       "Google DeepMind",
			Endpoint:   "https://deepmind.google/blog/rss.xml",
			Role:       RoleCategory,
			MaxItems:   40,
			Language:   "en",
			ImageField: HintMediaThumbnail,
		},
		{
			Key:      "nvidia_blog",
			Name:     "NVIDIA AI",
			Endpoint: "https://blogs.nvidia.com/feed/",
			Role:     RoleCategory,
			MaxItems: 40,
			Language: "en",
		},
		{
			Key:      "huggingface_blog",
			Name:     "Hugging Face",
			Endpoint: "https://huggingface.co/blog/feed.xml",
			Role:     RoleCategory,
			MaxItems: 40,
			Language: "en",
		},
		{
			Key:      "aitimes",
			Name:     "AI타임스",
			Endpoint: "https://www.aitimes.com/rss/allArticle.xml",
			Role:     RoleSection,
			MaxItems: 30,
			Language: "ko",
		},
		{
			Key:      "geeknews",
			Name:     "GeekNews",
			Endpoint: "https://news.hada.io/rss/news",
			Role:     RoleSection,
			MaxItems: 30,
			Language: "ko",
		},
		{
			Key:      "zdnet_ai_editor",
			Name:     "ZDNet AI 에디터",
			Endpoint: "https://zdnet.co.kr/reporter/?lstcode=media",
			Kind:     KindPage,
			Role:     RoleSection,
			MaxItems: 30,
			Language: "ko",
		},
		{
			Key:        "yozm_ai",
			Name:       "요즘IT AI",
			Endpoint:   "https://yozm.wishket.com/magazine/ai/feed/",
			Role:       RoleSection,
			MaxItems:   30,
			Language:   "ko",
			ImageField: HintContentImage,
		},
		{
			Key:        "the_decoder",
			Name:       "The Decoder",
			Endpoint:   "https://the-decoder.com/feed/",
			Role:       RoleSection,
			MaxItems:   30,
			Language:   "en",
			ImageField: HintContentImage,
		},
		{
			Key:        "marktechpost",
			Name:       "MarkTechPost",
			Endpoint:   "https://www.marktechpost.com/feed/",
			Role:       RoleSection,
			MaxItems:   30,
			Language:   "en",
			ImageField: HintMediaThumbnail,
		},
		{
			Key:      "openai_blog",
			Name:     "OpenAI Blog",
			Endpoint: "https://openai.com/news/rss.xml",
			Role:     RoleSection,
			MaxItems: 30,
			Language: "en",
		},
		{
			Key:      "arstechnica_ai",
			Name:     "Ars Technica AI",
			Endpoint: "https://arstechnica.com/ai/feed/",
			Role:     RoleSection,
			MaxItems: 30,
			Language: "en",
		},
		{
			Key:      "the_rundown_ai",
			Name:     "The Rundown AI",
			Endpoint: "https://rss.beehiiv.com/feeds/2R3C6Bt5wj.xml",
			Role:     RoleSection,
			MaxItems: 30,
			Language: "en",
		},
	}
}
