package skills

// Vocabularies matched by case-insensitive substring. Entries keep their
// display casing; that casing is what ends up in the skill set.
var (
	technicalSkills = []string{
		"JavaScript", "TypeScript", "Python", "Java", "Golang", "C++", "C#",
		"Ruby", "PHP", "Swift", "Kotlin", "Rust", "Scala", "SQL", "NoSQL",
		"React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask",
		"Spring", "HTML", "CSS", "MongoDB", "PostgreSQL", "MySQL", "Redis",
		"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "Git",
		"Linux", "REST", "GraphQL", "Machine Learning", "Deep Learning",
		"Data Analysis", "Data Science", "TensorFlow", "PyTorch", "Pandas",
		"Excel", "Tableau", "Power BI", "Figma", "Photoshop", "SEO",
		"Digital Marketing", "Salesforce", "SAP", "Agile", "Scrum", "DevOps",
		"CI/CD", "Cybersecurity", "Blockchain", "Android", "iOS",
	}

	softSkills = []string{
		"Communication", "Leadership", "Teamwork", "Problem Solving",
		"Critical Thinking", "Time Management", "Adaptability", "Creativity",
		"Collaboration", "Negotiation", "Presentation", "Public Speaking",
		"Mentoring", "Decision Making", "Conflict Resolution",
		"Emotional Intelligence", "Project Management", "Stakeholder Management",
		"Customer Service", "Attention to Detail",
	}

	roleNames = []string{
		"Software Engineer", "Software Developer", "Frontend Developer",
		"Backend Developer", "Full Stack Developer", "Data Scientist",
		"Data Analyst", "Data Engineer", "Product Manager", "Project Manager",
		"Program Manager", "UX Designer", "UI Designer", "Graphic Designer",
		"Business Analyst", "Marketing Manager", "Content Writer",
		"HR Manager", "Recruiter", "Consultant", "Accountant",
		"Financial Analyst", "Sales Executive", "QA Engineer", "Test Engineer",
		"DevOps Engineer", "Cloud Architect", "Team Lead", "Scrum Master",
		"Operations Manager",
	}
)
