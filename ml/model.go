package ml

// Classifier is a trained binary classifier. PredictProba returns the class
// membership distribution for one row: index 0 is the legitimate class and
// index 1 the fraud class.
type Classifier interface {
	PredictProba(features []float64) ([]float64, error)
	NumFeatures() int
}

// Model kinds understood by LoadModel.
const (
	KindLogisticRegression = "logistic_regression"
	KindDecisionTree       = "decision_tree"
	KindRandomForest       = "random_forest"
)
