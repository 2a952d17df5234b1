/*
Package onboarding implements the five-step onboarding wizard.

The wizard walks name, career goal, experience level, preferred domains and a
review step. Next validates the required field of the current step and moves
forward by one; Back moves back by one and never below the first step. Next on
the review step submits the collected answers as a single profile update that
also marks the user as onboarded.

A Wizard operates on a domain.OnboardingDraft owned by the caller (usually the
session workspace), so it can be rebuilt around stored state on every request.
*/
package onboarding
