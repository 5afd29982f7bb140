package db

type (
	// Image represents a source image path or URL
	Image struct {
		ID  int64
		URI string // Unique constraint
	}

	// ImageSize represents the dimensions the image was clustered at
	ImageSize struct {
		ID      int64
		ImageID int64
		Width   int
		Height  int
		// Unique constraint on (ImageID, Width, Height)
	}

	// RunParam represents the clustering parameters shared by a K sweep
	RunParam struct {
		ID            int64
		ColorSpace    string
		Scale         float64
		Seed          int64
		MaxIterations int
		// Unique constraint on (ColorSpace, Scale, Seed, MaxIterations)
	}

	// Result represents one clustering run
	Result struct {
		ID          int64
		ImageSizeID int64
		RunParamID  int64
		K           int

		SSE           float64
		Iterations    int
		Converged     bool
		EmptyClusters int
		DurationMS    float64

		// Bit-packed assignment, optional
		Labels []byte

		// Unique constraint on (ImageSizeID, RunParamID, K)
	}
)
