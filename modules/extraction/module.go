package extraction

import (
	"meeting-slot-api/core/cache"
	"meeting-slot-api/core/config"
	"meeting-slot-api/modules/extraction/client"
	"meeting-slot-api/modules/extraction/service"
)

type Module struct {
	Extractor  service.Extractor
	Classifier *service.Classifier
}

// Init builds the LLM-backed extractor and classifier. A nil cache disables memoisation.
func Init(cfg config.LLMConfig, c cache.Cache) *Module {
	llm := client.NewChatClient(client.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})

	var extractor service.Extractor = service.NewLLMExtractor(llm)
	if c != nil {
		extractor = service.NewCachedExtractor(extractor, c, cfg.CacheTTL)
	}

	return &Module{
		Extractor:  extractor,
		Classifier: service.NewClassifier(llm),
	}
}
