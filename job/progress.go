package job

// Pipeline stages, in execution order.
const (
	StageParsePDF  = "parse_pdf"
	StageExcel     = "excel"
	StageBuildHTML = "build_html"
)

// StageWeights apportions the overall percentage across stages. The
// values sum to 1.
var StageWeights = map[string]float64{
	StageParsePDF:  0.3333333333,
	StageExcel:     0.2,
	StageBuildHTML: 0.4666666667,
}

// StageText is what the polling page shows for each stage.
var StageText = map[string]string{
	StageParsePDF:  "Processing File…",
	StageExcel:     "Generating Data…",
	StageBuildHTML: "Building Organizer + OptiSheets…",
}

// defaultStageSeconds seeds the duration estimates before any job has
// completed a stage.
var defaultStageSeconds = map[string]float64{
	StageParsePDF:  25,
	StageExcel:     15,
	StageBuildHTML: 35,
}

const (
	// progressSlack stretches the expected stage duration so slow jobs
	// do not hit the cap early.
	progressSlack = 1.5
	// stageProgressCap keeps an unfinished stage from reporting its
	// full weight.
	stageProgressCap = 0.98
)
