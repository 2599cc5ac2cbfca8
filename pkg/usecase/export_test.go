package usecase

import "time"

// SetNowForTest replaces the clock used to stamp new tasks
func (uc *TaskUseCase) SetNowForTest(now func() time.Time) {
	uc.now = now
}

// ParseClassification is exported for testing
var ParseClassification = parseClassification

// StripCodeFence is exported for testing
var StripCodeFence = stripCodeFence
