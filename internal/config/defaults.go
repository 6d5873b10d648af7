package config

const (
	BackendS3    = "s3"
	BackendLocal = "local"

	// SandboxEndpoint is the MTurk requester sandbox.
	SandboxEndpoint = "https://mturk-requester-sandbox.us-east-1.amazonaws.com"

	defaultRegion         = "us-east-1"
	defaultAudioExt       = "wav"
	defaultMaxQuestions   = 10
	defaultDummyQuestions = 2
	defaultCoverage       = 3
	defaultReward         = "0.50"
	defaultLifetime       = 7 * 24 * 60 * 60
	defaultDuration       = 60 * 60
	defaultApprovalDelay  = 3 * 24 * 60 * 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetsDir: "./assets",
			AudioDir:  "./audio",
			WorkDir:   "~/.local/share/abxsurvey",
			LogDir:    "~/.local/share/abxsurvey/logs",
		},
		Audio: Audio{Ext: defaultAudioExt},
		Storage: Storage{
			Backend:    BackendS3,
			Region:     defaultRegion,
			PublicRead: true,
			LocalDir:   "~/.local/share/abxsurvey/objects",
		},
		Survey: Survey{
			Title:                 "Audio comparison listening test",
			Description:           "Listen to short audio clips and pick the one closest to a reference.",
			Keywords:              "audio, listening, comparison, survey",
			MaxQuestionsPerForm:   defaultMaxQuestions,
			DummyQuestionsPerForm: defaultDummyQuestions,
			Coverage:              defaultCoverage,
			Reward:                defaultReward,
			Lifetime:              defaultLifetime,
			Duration:              defaultDuration,
			ApprovalDelay:         defaultApprovalDelay,
		},
		MTurk: MTurk{
			Sandbox: true,
			Region:  defaultRegion,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
