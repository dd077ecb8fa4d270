package constant

// Progress wording pushed through the streaming channel while the remote
// agent works.
const (
	ProgressGenerating         = "Generating workout..."
	ProgressGeneratingDetailed = "Generating workout... Determining best exercises for client..."
	ProgressGenerated          = "Workout Generated!"

	ProgressNextDay         = "Generating workout for next day..."
	ProgressNextDayDetailed = "Generating workout for next day... Selecting best exercises..."
	ProgressNextDayDone     = "Workout for the next day generated!"

	ProgressRevising         = "Revising workout..."
	ProgressRevisingDetailed = "Revising workout... Incorporating feedback..."
	ProgressRevised          = "Workout revised!"

	ProgressFailed = "Workout generation failed. Please try again."
)
