package types

// ScoreCategory is one of the six scored dimensions of advocacy. The
// education catalogue and the analysis report both key on these.
type ScoreCategory string

const (
	ScoreLegalAccuracy      ScoreCategory = "legal_accuracy"
	ScorePersuasiveness     ScoreCategory = "persuasiveness"
	ScoreEvidenceHandling   ScoreCategory = "evidence_handling"
	ScoreWitnessExamination ScoreCategory = "witness_examination"
	ScoreObjectionSuccess   ScoreCategory = "objection_success"
	ScoreDecorum            ScoreCategory = "courtroom_decorum"
)

// ScoreCategories lists every category in report order.
func ScoreCategories() []ScoreCategory {
	return []ScoreCategory{
		ScoreLegalAccuracy, ScorePersuasiveness, ScoreEvidenceHandling,
		ScoreWitnessExamination, ScoreObjectionSuccess, ScoreDecorum,
	}
}
