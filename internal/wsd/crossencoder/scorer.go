package crossencoder

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Pair is one (marked-sentence, sense-definition) candidate to score.
type Pair struct {
	// Sentence already has its target surface wrapped in TargetOpen/TargetClose.
	Sentence   string
	Definition string
}

// String renders p in the fixed wire format spec §6 names
// ("{sentence} </s></s> {definition}"), used only for logging.
func (p Pair) String() string {
	return p.Sentence + PairSeparator + p.Definition
}

// Scorer scores a batch of Pairs, returning one logit per pair in order.
// Accepting this interface (rather than *ONNXScorer directly) lets
// internal/wsd test its score-gap decision logic with a fake.
type Scorer interface {
	Score(ctx context.Context, pairs []Pair) ([]float32, error)
}

// ONNXScorer runs the cross-encoder named by ModelName through ONNX
// Runtime, grounded on the reranker precedent's session/tensor shape.
type ONNXScorer struct {
	vocab   *vocabulary
	session *ort.DynamicAdvancedSession
}

var ortOnce sync.Once

// Load initializes the shared ONNX Runtime environment (once per process)
// and opens a scoring session for the model at modelPath, whose
// tokenizer.json sibling file supplies the vocabulary.
func Load(modelPath, onnxLibPath string) (*ONNXScorer, error) {
	ortOnce.Do(func() {
		ort.SetSharedLibraryPath(onnxLibPath)
		_ = ort.InitializeEnvironment()
	})

	vocab, err := loadVocabulary(filepath.Join(filepath.Dir(modelPath), "tokenizer.json"))
	if err != nil {
		return nil, fmt.Errorf("load cross-encoder vocabulary: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create cross-encoder session: %w", err)
	}

	return &ONNXScorer{vocab: vocab, session: session}, nil
}

// Unload releases the ONNX session. GPU memory is unshared between the WSD
// stage's neural scorer and any other model holder, so callers must Unload
// before the process exits or before another GPU-resident model loads
// (spec §5: "the WSD stage explicitly releases ... the neural scorer").
func (s *ONNXScorer) Unload() error {
	if s.session == nil {
		return nil
	}
	return s.session.Destroy()
}

// Score runs one forward pass over the whole batch. Callers are expected to
// chunk to config.PipelineConfig.WSDCrossEncoderBatch pairs per call
// (spec §4.7: "~64 per forward pass").
func (s *ONNXScorer) Score(ctx context.Context, pairs []Pair) ([]float32, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batchSize := int64(len(pairs))
	seqLen := int64(MaxSeqLen)

	inputIDs := make([]int64, len(pairs)*MaxSeqLen)
	attentionMask := make([]int64, len(pairs)*MaxSeqLen)
	for i, p := range pairs {
		ids, mask := s.vocab.encodePair(p.Sentence, p.Definition)
		copy(inputIDs[i*MaxSeqLen:], ids)
		copy(attentionMask[i*MaxSeqLen:], mask)
	}

	shape := ort.NewShape(batchSize, seqLen)
	inputIDsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer inputIDsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	outputShape := ort.NewShape(batchSize, 1)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("create logits tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := s.session.Run(
		[]ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor},
		[]ort.ArbitraryTensor{outputTensor},
	); err != nil {
		return nil, fmt.Errorf("run cross-encoder inference: %w", err)
	}

	data := outputTensor.GetData()
	scores := make([]float32, len(pairs))
	copy(scores, data)
	return scores, nil
}
