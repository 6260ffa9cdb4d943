package judger

import "github.com/hotwords123/judge-v3/judge"

var (
	_ judge.Judger = (*Standard)(nil)
	_ judge.Judger = (*AnswerSubmission)(nil)
	_ judge.Judger = (*Interactive)(nil)
)
