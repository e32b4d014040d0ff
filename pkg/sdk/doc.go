// Package sdk provides a Go client for the hirelens resume evaluation
// service.
//
//	client := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//
//	resume, _ := os.ReadFile("resume.pdf")
//	up, _ := client.UploadResume(ctx, sdk.UploadResumeRequest{
//	    Name:           "Jane Doe",
//	    Role:           "Backend Engineer",
//	    GitHubUsername: "janedoe",
//	    Resume:         resume,
//	})
//
//	reply, _ := client.Query(ctx, []sdk.Message{
//	    {Role: "user", Content: "Evaluate this candidate for a Go position"},
//	})
package sdk
