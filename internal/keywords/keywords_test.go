package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_JobPostingSentence(t *testing.T) {
	got := Classify("Looking for a backend developer experienced in AWS and Python, with Docker and Kubernetes.")
	assert.Equal(t, []string{"aws", "docker", "kubernetes", "python"}, got.Sorted())
}

func TestClassify_Empty(t *testing.T) {
	assert.Equal(t, 0, Classify("").Len())
	assert.Equal(t, 0, Classify("   \n\t").Len())
}

func TestClassify_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"special spellings survive tokenization", "C++ and C# with Node.js and Next.js", []string{"c#", "c++", "next.js", "node.js"}},
		{"digit allow-list", "S3, EC2, RDS, SQS, SNS and k8s", []string{"ec2", "k8s", "rds", "s3", "sns", "sqs"}},
		{"other digit tokens dropped", "python3 ipv6 2024 web3", nil},
		{"acronyms", "REST API over SQL, some NLP and ETL", []string{"api", "etl", "nlp", "rest", "sql"}},
		{"hyphenated allow-list term kept", "scikit-learn", []string{"scikit-learn"}},
		{"generic hyphenated words dropped", "cloud-native, data-driven, self-starter", nil},
		{"canonicalized titles are stop words", "Back-End and Front-End and Full-Stack", nil},
		{"trailing punctuation stripped", "(Terraform), \"Ansible\"; Helm!", []string{"ansible", "helm", "terraform"}},
		{"curly quotes stripped", "“Kafka”", []string{"kafka"}},
		{"slash splits tokens", "CI/CD pipelines", []string{"cd", "ci"}},
		{"duplicates collapse", "Go golang Golang GOLANG", []string{"golang"}},
		{"non-technical words dropped", "leadership mentoring ownership", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input).Sorted()
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_NoStopWordsNumbersOrUnlistedHyphens(t *testing.T) {
	text := strings.Join([]string{
		"We are looking for an experienced engineer to join our team.",
		"Requirements: 5+ years of Python, 3 years of AWS, results-driven attitude.",
		"Nice to have: scikit-learn, well-rounded cross-functional cloud-native mindset, 100% remote.",
		"Go, REST, gRPC, Kafka, PostgreSQL 15, Redis 7.",
	}, " ")

	for _, kw := range Classify(text).Sorted() {
		assert.False(t, IsStopWord(kw), "stop word %q classified as technical", kw)
		assert.False(t, isNumeric(kw), "numeric token %q classified as technical", kw)
		if strings.Contains(kw, "-") {
			assert.True(t, contains(techTerms, kw), "unlisted hyphenated token %q", kw)
		}
	}
}

func TestClassify_OrderIndependent(t *testing.T) {
	a := Classify("Python Docker AWS Kafka")
	b := Classify("Kafka AWS Docker Python")
	assert.Equal(t, a.Sorted(), b.Sorted())
}

func TestIsTechTerm_RuleOrder(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"python", true},
		{"42", false},
		{"ec2", true},
		{"x86", false},
		{"jwt", true},
		{"scikit-learn", true},
		{"well-known", false},
		{".net", true},
		{"asp.net", false},
		{"synergy", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTechTerm(tt.tok), tt.tok)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "backend", Normalize("Back-End,"))
	assert.Equal(t, "frontend", Normalize("FRONT-END"))
	assert.Equal(t, "fullstack", Normalize("full-stack."))
	assert.Equal(t, "node.js", Normalize("Node.js."))
	assert.Equal(t, "c++", Normalize("C++"))
}

func TestSet_Operations(t *testing.T) {
	a := NewSet("aws", "python", "docker")
	b := NewSet("aws", "python", "graphql")

	assert.Equal(t, []string{"aws", "python"}, a.Intersect(b).Sorted())
	assert.Equal(t, []string{"docker"}, a.Difference(b).Sorted())
	assert.Equal(t, []string{"graphql"}, b.Difference(a).Sorted())
	assert.True(t, a.Contains("docker"))
	assert.False(t, a.Contains("graphql"))
	assert.Equal(t, 3, a.Len())
}

func TestTechTerms_AllReachable(t *testing.T) {
	for term := range techTerms {
		assert.False(t, IsStopWord(term), "allow-listed %q is removed as a stop word first", term)
		assert.Greater(t, len(term), 1, "allow-listed %q is removed as too short", term)
	}
}

func TestClassify_GoNeedsLongName(t *testing.T) {
	assert.Equal(t, []string{"golang", "node.js"}, Classify("Go, Golang and Node.js").Sorted())
}
