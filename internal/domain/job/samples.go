package job

import "time"

// Samples is the fixed catalogue returned by job search until a real job
// board integration exists. External ids are stable so repeated searches
// never duplicate rows.
func Samples() []Job {
	return []Job{
		{
			ExternalJobID:  "job123",
			Title:          "Senior Software Engineer",
			Company:        "Tech Solutions LLC",
			Location:       "Dubai, UAE",
			Description:    "We are looking for a Senior Software Engineer with experience in Python, JavaScript, and cloud technologies.",
			JobURL:         "https://linkedin.com/jobs/view/job123",
			EmploymentType: "Full-time",
			Industries:     []string{"Technology", "Software Development"},
			PostedAt:       datePtr(2025, time.May, 15),
		},
		{
			ExternalJobID:  "job456",
			Title:          "Data Scientist",
			Company:        "Analytics Innovations",
			Location:       "Abu Dhabi, UAE",
			Description:    "Join our team as a Data Scientist working on cutting-edge AI and machine learning projects.",
			JobURL:         "https://linkedin.com/jobs/view/job456",
			EmploymentType: "Full-time",
			Industries:     []string{"Technology", "Data Science"},
			PostedAt:       datePtr(2025, time.May, 18),
		},
		{
			ExternalJobID:  "job789",
			Title:          "Product Manager",
			Company:        "Global Tech",
			Location:       "Dubai, UAE",
			Description:    "We are seeking an experienced Product Manager to lead our product development initiatives.",
			JobURL:         "https://linkedin.com/jobs/view/job789",
			EmploymentType: "Full-time",
			Industries:     []string{"Technology", "Product Management"},
			PostedAt:       datePtr(2025, time.May, 19),
		},
	}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
