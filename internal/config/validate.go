package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.LLM.Concurrency <= 0 {
		return fmt.Errorf("llm.concurrency must be > 0 (got %d)", c.LLM.Concurrency)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be >= 0 (got %d)", c.LLM.MaxRetries)
	}

	if c.Registry.Path == "" {
		return fmt.Errorf("registry.path is required")
	}

	if c.Dictionary.BaseInterval <= 0 {
		return fmt.Errorf("dictionary.base_interval must be > 0")
	}
	if c.Dictionary.MaxInterval < c.Dictionary.BaseInterval {
		return fmt.Errorf("dictionary.max_interval must be >= dictionary.base_interval")
	}

	if err := c.Pipeline.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	return nil
}

func (p *PipelineConfig) validate() error {
	if p.NormalizerBatchSentences <= 0 {
		return fmt.Errorf("normalizer_batch_sentences must be > 0 (got %d)", p.NormalizerBatchSentences)
	}
	if p.NormalizerBatchSurfaces <= 0 {
		return fmt.Errorf("normalizer_batch_surfaces must be > 0 (got %d)", p.NormalizerBatchSurfaces)
	}
	if p.ClusterBatchLemmas <= 0 {
		return fmt.Errorf("cluster_batch_lemmas must be > 0 (got %d)", p.ClusterBatchLemmas)
	}
	if p.GenerationBatchEntries <= 0 {
		return fmt.Errorf("generation_batch_entries must be > 0 (got %d)", p.GenerationBatchEntries)
	}
	if p.WSDFallbackBatchLemmas <= 0 {
		return fmt.Errorf("wsd_fallback_batch_lemmas must be > 0 (got %d)", p.WSDFallbackBatchLemmas)
	}
	if p.WSDChunkSize <= 0 {
		return fmt.Errorf("wsd_chunk_size must be > 0 (got %d)", p.WSDChunkSize)
	}
	if p.WSDCrossEncoderBatch <= 0 {
		return fmt.Errorf("wsd_cross_encoder_batch must be > 0 (got %d)", p.WSDCrossEncoderBatch)
	}
	return nil
}
