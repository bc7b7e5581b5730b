package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ProjectsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "badgehub_projects_created_total", Help: "Total projects created"},
	)
	ProjectJoins = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "badgehub_project_joins_total", Help: "Total project participations created"},
	)
	AwardsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "badgehub_awards_issued_total", Help: "Total badge awards issued"},
	)
	RatingsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "badgehub_ratings_submitted_total", Help: "Total peer ratings submitted"},
	)
	AssessmentsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "badgehub_assessments_completed_total", Help: "Total assessments that received all rubric ratings"},
	)
)

func Register() {
	prometheus.MustRegister(
		ProjectsCreated,
		ProjectJoins,
		AwardsIssued,
		RatingsSubmitted,
		AssessmentsCompleted,
	)
}
