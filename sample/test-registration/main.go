package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/landingkit/seminar-signups/internal/client"
)

type settings struct {
	Endpoint     string `envconfig:"REGISTRATION_ENDPOINT_URL" default:"http://localhost:8080/register"`
	ContactEmail string `envconfig:"BRAND_CONTACT_EMAIL" default:"hello@mathewgibeault.ca"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	var s settings
	if err := envconfig.Process("", &s); err != nil {
		log.Fatal(err)
	}

	c := client.New(s.Endpoint, s.ContactEmail)
	c.OnSuccess = func(sub client.Submission) {
		log.Printf("form_submit category=seminar_registration label=%q", sub.SeminarDate)
	}

	sub := client.Submission{
		FirstName:   "Test",
		LastName:    "User",
		Email:       "test@example.com",
		Phone:       client.FormatPhone("5551234567"),
		SeminarDate: "Tuesday, Jan 14 at 7:00 PM EST",
		Timeline:    "6-12 months",
	}

	fmt.Printf("Submitting to %s\n", s.Endpoint)
	fmt.Printf("  Name:     %s %s\n", sub.FirstName, sub.LastName)
	fmt.Printf("  Email:    %s\n", sub.Email)
	fmt.Printf("  Phone:    %s\n", sub.Phone)
	fmt.Printf("  Seminar:  %s\n", sub.SeminarDate)
	fmt.Printf("  Timeline: %s\n\n", sub.Timeline)

	out := c.Submit(context.Background(), sub)
	if !out.Success {
		log.Fatalf("%s (%v)", out.Message, out.Err)
	}
	fmt.Println(out.Message)
	fmt.Println("Check the sheet for a new row and both inboxes for the emails.")
}
