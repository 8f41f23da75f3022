package ml

import (
	"encoding/json"
	"fmt"
)

// LoadModel decodes params for the given model kind and checks that the
// model accepts exactly nFeatures inputs.
func LoadModel(kind string, params json.RawMessage, nFeatures int) (Classifier, error) {
	var model interface {
		Classifier
		validate(nFeatures int) error
	}
	switch kind {
	case KindLogisticRegression:
		model = &LogisticRegression{}
	case KindDecisionTree:
		model = &DecisionTree{}
	case KindRandomForest:
		model = &RandomForest{}
	default:
		return nil, fmt.Errorf("unsupported model kind %q", kind)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("%s: params missing", kind)
	}
	if err := json.Unmarshal(params, model); err != nil {
		return nil, fmt.Errorf("%s: decode params: %w", kind, err)
	}
	if err := model.validate(nFeatures); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return model, nil
}
